package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

var (
	_ repository.ShipmentRepository        = (*ShipmentRepo)(nil)
	_ repository.ShipmentReceiptRepository = (*ShipmentRepo)(nil)
)

// ShipmentRepo implementación de los puertos de envíos sobre PostgreSQL (usable con pool o tx).
type ShipmentRepo struct {
	q           Querier
	lockTimeout time.Duration
}

// NewShipmentRepository construye el adaptador para envíos.
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

// NewShipmentReceiptRepository adaptador para la transacción de recepción; mismo tipo que NewShipmentRepository.
func NewShipmentReceiptRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

const shipmentColumns = `s.id, s.supplier_id, s.dest_hub_id, h.name, s.status, s.created_at, s.received_at`

func scanShipment(row pgx.Row) (*entity.Shipment, error) {
	var (
		s        entity.Shipment
		supplier *string
	)
	if err := row.Scan(&s.ID, &supplier, &s.DestHubID, &s.DestHubName, &s.Status, &s.CreatedAt, &s.ReceivedAt); err != nil {
		return nil, err
	}
	s.SupplierID = deref(supplier)
	return &s, nil
}

// Create persiste un envío nuevo (sin líneas).
func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO shipments (id, supplier_id, dest_hub_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, nullable(s.SupplierID), s.DestHubID, s.Status, s.CreatedAt)
	if err != nil {
		return classify("insert shipment", err)
	}
	return nil
}

// AddLine agrega una línea al final del envío, solo mientras esté PENDING. Toma el mismo lock de
// fila que la recepción, así una línea nunca entra en un envío que se está recibiendo.
func (r *ShipmentRepo) AddLine(ctx context.Context, line *entity.ShipmentLine) error {
	b, ok := r.q.(txBeginner)
	if !ok {
		return insertLine(ctx, r.q, line)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return classify("begin add shipment line", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := setLockTimeout(ctx, tx, r.lockTimeout); err != nil {
		return err
	}
	if err := insertLine(ctx, tx, line); err != nil {
		return err
	}
	return classify("commit add shipment line", tx.Commit(ctx))
}

func insertLine(ctx context.Context, q Querier, line *entity.ShipmentLine) error {
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM shipments WHERE id = $1 FOR UPDATE`, line.ShipmentID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return domain.ErrNotFound
		}
		return classify("lock shipment", err)
	}
	if status != entity.ShipmentStatusPending {
		return domain.ErrConflict
	}
	err = q.QueryRow(ctx, `
		INSERT INTO shipment_lines (id, shipment_id, sku_id, quantity, position)
		VALUES ($1, $2, $3, $4,
		        COALESCE((SELECT MAX(position) FROM shipment_lines WHERE shipment_id = $2), 0) + 1)
		RETURNING position`,
		line.ID, line.ShipmentID, line.SKUID, line.Quantity).Scan(&line.Position)
	return classify("insert shipment line", err)
}

// GetByID obtiene un envío con sus líneas.
func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene el envío y bloquea su fila hasta el fin de la tx.
func (r *ShipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.get(ctx, id, true)
}

func (r *ShipmentRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + `
		FROM shipments s JOIN hubs h ON h.id = s.dest_hub_id
		WHERE s.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF s`
	}
	s, err := scanShipment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, classify("get shipment", err)
	}
	if s.Lines, err = r.lines(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ShipmentRepo) lines(ctx context.Context, shipmentID string) ([]entity.ShipmentLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.id, l.shipment_id, l.sku_id, k.code, l.quantity, l.position
		FROM shipment_lines l JOIN skus k ON k.id = l.sku_id
		WHERE l.shipment_id = $1
		ORDER BY l.position`, shipmentID)
	if err != nil {
		return nil, classify("list shipment lines", err)
	}
	defer rows.Close()

	var out []entity.ShipmentLine
	for rows.Next() {
		var l entity.ShipmentLine
		if err := rows.Scan(&l.ID, &l.ShipmentID, &l.SKUID, &l.SKUCode, &l.Quantity, &l.Position); err != nil {
			return nil, classify("scan shipment line", err)
		}
		out = append(out, l)
	}
	return out, classify("list shipment lines", rows.Err())
}

// MarkReceived cambia el estado a RECEIVED. Solo una vez: PENDING -> RECEIVED.
func (r *ShipmentRepo) MarkReceived(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE shipments SET status = 'RECEIVED', received_at = $2
		WHERE id = $1 AND status = 'PENDING'`, id, at)
	if err != nil {
		return classify("mark shipment received", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConflict
	}
	return nil
}

// ListByHubs lista envíos de los hubs indicados (nil = todos), más recientes primero, con sus líneas.
func (r *ShipmentRepo) ListByHubs(ctx context.Context, hubIDs []string, limit int) ([]*entity.Shipment, error) {
	query := `SELECT ` + shipmentColumns + `
		FROM shipments s JOIN hubs h ON h.id = s.dest_hub_id`
	args := []any{}
	if hubIDs != nil {
		args = append(args, hubIDs)
		query += ` WHERE s.dest_hub_id::text = ANY($1)`
	}
	query += ` ORDER BY s.created_at DESC, s.id DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + itoa(len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list shipments", err)
	}
	var out []*entity.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			rows.Close()
			return nil, classify("scan shipment", err)
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify("list shipments", err)
	}

	// Las líneas se cargan después de cerrar rows: una conexión no admite dos consultas abiertas.
	for _, s := range out {
		if s.Lines, err = r.lines(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
