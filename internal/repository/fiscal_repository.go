package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ressarcimento-service/internal/models"
)

// FiscalRepository lê as tabelas alimentadas pelo pipeline externo de
// importação (notas fiscais e guias de pagamento). Somente leitura.
type FiscalRepository interface {
	GetNotasByCompetencia(ctx context.Context, empresa string, comp models.Competencia) ([]models.NotaFiscal, error)
	GetGuiasUtilizaveis(ctx context.Context, empresa string) ([]models.Guia, error)
}

// fiscalRepository implementa FiscalRepository
type fiscalRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewFiscalRepository cria uma nova instância do repository
func NewFiscalRepository(db *sql.DB) (FiscalRepository, error) {
	repo := &fiscalRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

func (r *fiscalRepository) prepareStatements() error {
	statements := map[string]string{
		"get_notas": `
			SELECT id, empresa, numero_nota, quantidade, icms_proprio, icms_st,
				   chave_nfe, ano, mes, created_at
			FROM notas_fiscais
			WHERE empresa = $1 AND ano = $2 AND mes = $3
			ORDER BY numero_nota
		`,
		"get_guias_utilizaveis": `
			SELECT id, empresa, numero_nota, status, icms_proprio, icms_st,
				   numero_documento, codigo_barras, created_at
			FROM guias_pagamento
			WHERE empresa = $1 AND status = $2
			ORDER BY id
		`,
	}

	for name, query := range statements {
		stmt, err := r.db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s: %w", name, err)
		}
		r.stmts[name] = stmt
	}

	return nil
}

// GetNotasByCompetencia retorna as notas fiscais da competência
func (r *fiscalRepository) GetNotasByCompetencia(ctx context.Context, empresa string, comp models.Competencia) ([]models.NotaFiscal, error) {
	rows, err := r.stmts["get_notas"].QueryContext(ctx, empresa, comp.Ano, comp.Mes)
	if err != nil {
		return nil, fmt.Errorf("failed to get notas: %w", err)
	}
	defer rows.Close()

	var notas []models.NotaFiscal
	for rows.Next() {
		var nota models.NotaFiscal
		err := rows.Scan(
			&nota.ID, &nota.Empresa, &nota.NumeroNota, &nota.Quantidade,
			&nota.IcmsProprio, &nota.IcmsSt, &nota.ChaveNfe,
			&nota.Ano, &nota.Mes, &nota.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nota: %w", err)
		}
		notas = append(notas, nota)
	}

	return notas, rows.Err()
}

// GetGuiasUtilizaveis retorna as guias com status utilizável da empresa
func (r *fiscalRepository) GetGuiasUtilizaveis(ctx context.Context, empresa string) ([]models.Guia, error) {
	rows, err := r.stmts["get_guias_utilizaveis"].QueryContext(ctx, empresa, models.GuiaUtilizavel)
	if err != nil {
		return nil, fmt.Errorf("failed to get guias: %w", err)
	}
	defer rows.Close()

	var guias []models.Guia
	for rows.Next() {
		var guia models.Guia
		err := rows.Scan(
			&guia.ID, &guia.Empresa, &guia.NumeroNota, &guia.Status,
			&guia.IcmsProprio, &guia.IcmsSt, &guia.NumeroDocumento,
			&guia.CodigoBarras, &guia.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guia: %w", err)
		}
		guias = append(guias, guia)
	}

	return guias, rows.Err()
}
