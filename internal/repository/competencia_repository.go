package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ressarcimento-service/internal/models"
)

// ErrCompetenciaConfirmada indica que outro operador já confirmou o
// período; reprocessar duplicaria o consumo
var ErrCompetenciaConfirmada = errors.New("competência já confirmada")

// CompetenciaRepository é a trava de período imposta no armazenamento:
// UNIQUE (empresa, ano, mes) com coluna de status. Confirmar uma
// competência já confirmada falha em vez de silenciosamente reprocessar.
type CompetenciaRepository interface {
	Get(ctx context.Context, empresa string, comp models.Competencia) (*models.CompetenciaRegistro, error)
	Confirmar(ctx context.Context, empresa string, comp models.Competencia) error
	Reabrir(ctx context.Context, empresa string, comp models.Competencia) error
}

// competenciaRepository implementa CompetenciaRepository
type competenciaRepository struct {
	db *sql.DB
}

// NewCompetenciaRepository cria uma nova instância do repository
func NewCompetenciaRepository(db *sql.DB) CompetenciaRepository {
	return &competenciaRepository{db: db}
}

// Get retorna o registro da competência, ou nil se nunca foi tocada
func (r *competenciaRepository) Get(ctx context.Context, empresa string, comp models.Competencia) (*models.CompetenciaRegistro, error) {
	var registro models.CompetenciaRegistro
	err := r.db.QueryRowContext(ctx, `
		SELECT id, empresa, ano, mes, status
		FROM competencias
		WHERE empresa = $1 AND ano = $2 AND mes = $3
	`, empresa, comp.Ano, comp.Mes).Scan(
		&registro.ID, &registro.Empresa, &registro.Ano, &registro.Mes, &registro.Status,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competência: %w", err)
	}

	return &registro, nil
}

// Confirmar trava a competência. O WHERE do ON CONFLICT garante que uma
// competência já confirmada não é retomada: nenhuma linha retornada
// significa que outro operador chegou primeiro.
func (r *competenciaRepository) Confirmar(ctx context.Context, empresa string, comp models.Competencia) error {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO competencias (empresa, ano, mes, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (empresa, ano, mes) DO UPDATE SET status = EXCLUDED.status
		WHERE competencias.status <> $4
		RETURNING id
	`, empresa, comp.Ano, comp.Mes, models.CompetenciaConfirmada).Scan(&id)

	if err == sql.ErrNoRows {
		return ErrCompetenciaConfirmada
	}
	if err != nil {
		return fmt.Errorf("failed to confirm competência: %w", err)
	}

	return nil
}

// Reabrir libera a competência para edição por ação explícita do operador
func (r *competenciaRepository) Reabrir(ctx context.Context, empresa string, comp models.Competencia) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE competencias SET status = $1
		WHERE empresa = $2 AND ano = $3 AND mes = $4
	`, models.CompetenciaAberta, empresa, comp.Ano, comp.Mes)
	if err != nil {
		return fmt.Errorf("failed to reopen competência: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("competência %s/%s não encontrada", empresa, comp)
	}

	return nil
}
