package reporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/hub-inventory/internal/application/auth"
	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// DefaultLogsLimit entradas del listado de logs cuando no se configura otro valor.
const DefaultLogsLimit = 200

// LogsCSVHeader columnas del export del ledger.
var LogsCSVHeader = []string{"created_at", "user", "hub", "sku", "change", "note"}

// ReportUseCase listados de stock y del ledger limitados a los hubs visibles.
type ReportUseCase struct {
	stock     repository.StockQueryRepository
	ledger    repository.LedgerQueryRepository
	hubs      repository.HubRepository
	sheet     StockSheetGenerator
	logsLimit int
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso. sheet puede ser nil si no se sirve el PDF.
func NewReportUseCase(
	stock repository.StockQueryRepository,
	ledger repository.LedgerQueryRepository,
	hubs repository.HubRepository,
	sheet StockSheetGenerator,
	logsLimit int,
) *ReportUseCase {
	if logsLimit <= 0 {
		logsLimit = DefaultLogsLimit
	}
	return &ReportUseCase{
		stock:     stock,
		ledger:    ledger,
		hubs:      hubs,
		sheet:     sheet,
		logsLimit: logsLimit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListStock stock de los hubs visibles, ordenado por hub y código de SKU.
func (uc *ReportUseCase) ListStock(ctx context.Context, scope auth.Scope) (*dto.InventoryListResponse, error) {
	resp := &dto.InventoryListResponse{Items: []dto.StockResponse{}}
	label, err := uc.scopeLabel(ctx, scope)
	if err != nil {
		return nil, err
	}
	resp.Scope = label

	rows, err := uc.stockRows(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		resp.Items = append(resp.Items, ToStockResponse(r))
	}
	return resp, nil
}

// ToStockResponse mapea una fila de stock; Low = cantidad por debajo del umbral.
func ToStockResponse(r repository.StockRow) dto.StockResponse {
	return dto.StockResponse{
		HubID:             r.HubID,
		HubName:           r.HubName,
		SKUID:             r.SKUID,
		SKUCode:           r.SKUCode,
		SKUName:           r.SKUName,
		Quantity:          r.Quantity,
		LowStockThreshold: r.LowStockThreshold,
		Low:               r.Quantity < int64(r.LowStockThreshold),
		UpdatedAt:         r.UpdatedAt,
	}
}

func (uc *ReportUseCase) scopeLabel(ctx context.Context, scope auth.Scope) (string, error) {
	if scope.All {
		return "All hubs (admin)", nil
	}
	names, err := visibleHubNames(ctx, uc.hubs, scope)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "No hub assigned", nil
	}
	return strings.Join(names, ", "), nil
}

func (uc *ReportUseCase) stockRows(ctx context.Context, scope auth.Scope) ([]repository.StockRow, error) {
	filter := scope.Filter()
	if filter != nil && len(filter) == 0 {
		return nil, nil
	}
	return uc.stock.ListByHubs(ctx, filter)
}

// ListLogs entradas recientes del ledger (más recientes primero) de los hubs visibles.
func (uc *ReportUseCase) ListLogs(ctx context.Context, scope auth.Scope) ([]dto.LedgerEntryResponse, error) {
	out := []dto.LedgerEntryResponse{}
	filter := scope.Filter()
	if filter != nil && len(filter) == 0 {
		return out, nil
	}
	rows, err := uc.ledger.List(ctx, repository.LedgerFilter{HubIDs: filter, Limit: uc.logsLimit})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out = append(out, ToLedgerEntryResponse(r))
	}
	return out, nil
}

// ToLedgerEntryResponse mapea una fila del ledger.
func ToLedgerEntryResponse(r repository.LedgerRow) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		ActorID:   r.ActorID,
		ActorName: r.ActorName,
		HubID:     r.HubID,
		HubName:   r.HubName,
		SKUID:     r.SKUID,
		SKUCode:   r.SKUCode,
		Delta:     r.Delta,
		Note:      r.Note,
	}
}

// LogsFilename nombre del archivo de export para la fecha dada.
func LogsFilename(t time.Time) string {
	return "inventory_logs_" + t.Format("2006-01-02") + ".csv"
}

// ExportFilename nombre del export para hoy.
func (uc *ReportUseCase) ExportFilename() string {
	return LogsFilename(uc.now())
}

// WriteLogsCSV escribe en w todo el ledger visible (más recientes primero).
// Un actor eliminado sale con usuario vacío.
func (uc *ReportUseCase) WriteLogsCSV(ctx context.Context, w io.Writer, scope auth.Scope) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LogsCSVHeader); err != nil {
		return err
	}
	filter := scope.Filter()
	if filter == nil || len(filter) > 0 {
		rows, err := uc.ledger.List(ctx, repository.LedgerFilter{HubIDs: filter})
		if err != nil {
			return err
		}
		for _, r := range rows {
			record := []string{
				r.CreatedAt.UTC().Format(time.RFC3339),
				r.ActorName,
				r.HubName,
				r.SKUCode,
				strconv.FormatInt(r.Delta, 10),
				r.Note,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// StockSheet genera el PDF de stock de un hub visible. Devuelve los bytes y el nombre de archivo.
func (uc *ReportUseCase) StockSheet(ctx context.Context, scope auth.Scope, hubID string) ([]byte, string, error) {
	if uc.sheet == nil {
		return nil, "", fmt.Errorf("hoja de stock: %w", domain.ErrConflict)
	}
	hub, err := uc.hubs.GetByID(ctx, hubID)
	if err != nil {
		return nil, "", err
	}
	if hub == nil {
		return nil, "", domain.ErrNotFound
	}
	if !scope.Allows(hub.ID) {
		return nil, "", domain.ErrForbidden
	}
	rows, err := uc.stock.ListByHubs(ctx, []string{hub.ID})
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	pdf, err := uc.sheet.GenerateStockSheet(hub, rows, now)
	if err != nil {
		return nil, "", fmt.Errorf("hoja de stock: %w", err)
	}
	return pdf, fmt.Sprintf("stock_%s_%s.pdf", slug(hub.Name), now.Format("2006-01-02")), nil
}

// slug nombre de archivo seguro: minúsculas, alfanumérico y guiones.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
