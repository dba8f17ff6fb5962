package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ressarcimento-service/internal/models"
)

// SaldoRepository define a interface de persistência dos saldos por nota.
// O upsert é idempotente por (empresa, numero_nota, ano, mes): repetir a
// mesma gravação não duplica linhas.
type SaldoRepository interface {
	// UpsertSaldo grava um saldo individual (usado no write-through de
	// edição sobre nota já confirmada)
	UpsertSaldo(ctx context.Context, saldo *models.SaldoNota) error

	// UpsertSaldos grava o lote em UM único comando multi-linha: ou o
	// lote inteiro entra, ou nada entra e o erro reporta o lote todo
	UpsertSaldos(ctx context.Context, saldos []*models.SaldoNota) error

	// GetSaldosByCompetencia retorna os saldos persistidos da competência
	GetSaldosByCompetencia(ctx context.Context, empresa string, comp models.Competencia) ([]*models.SaldoNota, error)

	// GetSaldoAnterior retorna o saldo mais recente de uma nota em
	// competência estritamente anterior à informada
	GetSaldoAnterior(ctx context.Context, empresa, numeroNota string, comp models.Competencia) (*models.SaldoNota, error)
}

// saldoRepository implementa SaldoRepository
type saldoRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewSaldoRepository cria uma nova instância do repository
func NewSaldoRepository(db *sql.DB) (SaldoRepository, error) {
	repo := &saldoRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

// prepareStatements prepara as consultas fixas para melhor desempenho
func (r *saldoRepository) prepareStatements() error {
	statements := map[string]string{
		"upsert_saldo": `
			INSERT INTO saldos_notas
			(empresa, numero_nota, ano, mes, saldo_remanescente, quantidade_original, quantidade_consumida, confirmado)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (empresa, numero_nota, ano, mes) DO UPDATE SET
				saldo_remanescente = EXCLUDED.saldo_remanescente,
				quantidade_original = EXCLUDED.quantidade_original,
				quantidade_consumida = EXCLUDED.quantidade_consumida,
				confirmado = EXCLUDED.confirmado,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`,
		"get_saldos_competencia": `
			SELECT id, empresa, numero_nota, ano, mes, saldo_remanescente,
				   quantidade_original, quantidade_consumida, confirmado, created_at, updated_at
			FROM saldos_notas
			WHERE empresa = $1 AND ano = $2 AND mes = $3
			ORDER BY numero_nota
		`,
		"get_saldo_anterior": `
			SELECT id, empresa, numero_nota, ano, mes, saldo_remanescente,
				   quantidade_original, quantidade_consumida, confirmado, created_at, updated_at
			FROM saldos_notas
			WHERE empresa = $1 AND numero_nota = $2
			  AND (ano < $3 OR (ano = $3 AND mes < $4))
			ORDER BY ano DESC, mes DESC
			LIMIT 1
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

// UpsertSaldo grava/atualiza um saldo individual
func (r *saldoRepository) UpsertSaldo(ctx context.Context, saldo *models.SaldoNota) error {
	err := r.stmts["upsert_saldo"].QueryRowContext(ctx,
		saldo.Empresa, saldo.NumeroNota, saldo.Ano, saldo.Mes,
		saldo.SaldoRemanescente, saldo.QuantidadeOriginal, saldo.QuantidadeConsumida, saldo.Confirmado,
	).Scan(&saldo.ID, &saldo.CreatedAt, &saldo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert saldo %s/%s: %w", saldo.Empresa, saldo.NumeroNota, err)
	}

	return nil
}

// UpsertSaldos grava o lote em um único INSERT multi-linha com ON CONFLICT.
// Uma falha deixa o armazenamento intocado e reporta as chaves tentadas.
func (r *saldoRepository) UpsertSaldos(ctx context.Context, saldos []*models.SaldoNota) error {
	if len(saldos) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO saldos_notas
		(empresa, numero_nota, ano, mes, saldo_remanescente, quantidade_original, quantidade_consumida, confirmado)
		VALUES `)

	args := make([]interface{}, 0, len(saldos)*8)
	for i, saldo := range saldos {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 8
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args,
			saldo.Empresa, saldo.NumeroNota, saldo.Ano, saldo.Mes,
			saldo.SaldoRemanescente, saldo.QuantidadeOriginal, saldo.QuantidadeConsumida, saldo.Confirmado,
		)
	}

	sb.WriteString(`
		ON CONFLICT (empresa, numero_nota, ano, mes) DO UPDATE SET
			saldo_remanescente = EXCLUDED.saldo_remanescente,
			quantidade_original = EXCLUDED.quantidade_original,
			quantidade_consumida = EXCLUDED.quantidade_consumida,
			confirmado = EXCLUDED.confirmado,
			updated_at = NOW()
	`)

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		chaves := make([]string, len(saldos))
		for i, saldo := range saldos {
			chaves[i] = saldo.NumeroNota
		}
		return fmt.Errorf("failed to upsert %d saldos (notas %s): %w",
			len(saldos), strings.Join(chaves, ","), err)
	}

	return nil
}

// GetSaldosByCompetencia retorna os saldos persistidos de uma competência
func (r *saldoRepository) GetSaldosByCompetencia(ctx context.Context, empresa string, comp models.Competencia) ([]*models.SaldoNota, error) {
	rows, err := r.stmts["get_saldos_competencia"].QueryContext(ctx, empresa, comp.Ano, comp.Mes)
	if err != nil {
		return nil, fmt.Errorf("failed to get saldos: %w", err)
	}
	defer rows.Close()

	var saldos []*models.SaldoNota
	for rows.Next() {
		saldo, err := scanSaldo(rows)
		if err != nil {
			return nil, err
		}
		saldos = append(saldos, saldo)
	}

	return saldos, rows.Err()
}

// GetSaldoAnterior retorna o fechamento mais recente anterior à competência
func (r *saldoRepository) GetSaldoAnterior(ctx context.Context, empresa, numeroNota string, comp models.Competencia) (*models.SaldoNota, error) {
	var saldo models.SaldoNota
	err := r.stmts["get_saldo_anterior"].QueryRowContext(ctx, empresa, numeroNota, comp.Ano, comp.Mes).Scan(
		&saldo.ID, &saldo.Empresa, &saldo.NumeroNota, &saldo.Ano, &saldo.Mes,
		&saldo.SaldoRemanescente, &saldo.QuantidadeOriginal, &saldo.QuantidadeConsumida,
		&saldo.Confirmado, &saldo.CreatedAt, &saldo.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saldo anterior: %w", err)
	}

	return &saldo, nil
}

func scanSaldo(rows *sql.Rows) (*models.SaldoNota, error) {
	var saldo models.SaldoNota
	err := rows.Scan(
		&saldo.ID, &saldo.Empresa, &saldo.NumeroNota, &saldo.Ano, &saldo.Mes,
		&saldo.SaldoRemanescente, &saldo.QuantidadeOriginal, &saldo.QuantidadeConsumida,
		&saldo.Confirmado, &saldo.CreatedAt, &saldo.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan saldo: %w", err)
	}
	return &saldo, nil
}
