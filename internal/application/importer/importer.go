// Package importer carga el catálogo de SKUs desde CSV. Es el único camino de importación:
// lo usan el upload HTTP y la CLI. Crea o actualiza SKUs, hubs y asignaciones; nunca stock.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// Columnas reconocidas (sin distinguir mayúsculas). sku y name son obligatorias.
const (
	ColSKU       = "sku"
	ColName      = "name"
	ColBarcode   = "barcode"
	ColThreshold = "low_stock_threshold"
	ColHubs      = "hubs"
)

// Options ajustes de una importación.
type Options struct {
	// ClearAssignments borra los vínculos hub-SKU de cada SKU importado antes de aplicar la columna hubs.
	ClearAssignments bool
	// DefaultThreshold se usa cuando low_stock_threshold falta o no es un entero.
	DefaultThreshold int
}

// Result resumen de la importación.
type Result struct {
	Rows             int
	SKUsCreated      int
	SKUsUpdated      int
	HubsCreated      int
	LinksCreated     int
	LinksActivated   int
	AssignmentsReset int
	Skipped          []string // "línea N: motivo"
}

// SKUImporter aplica un CSV sobre el catálogo.
type SKUImporter struct {
	skus  repository.SKURepository
	hubs  repository.HubRepository
	links repository.HubSKURepository
}

// NewSKUImporter construye el importador.
func NewSKUImporter(skus repository.SKURepository, hubs repository.HubRepository, links repository.HubSKURepository) *SKUImporter {
	return &SKUImporter{skus: skus, hubs: hubs, links: links}
}

// Import lee el CSV de r y aplica cada fila. Cada fila es idempotente: reimportar el mismo archivo
// no crea duplicados. Un error de persistencia corta la importación y devuelve lo aplicado hasta ahí.
func (im *SKUImporter) Import(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	if opts.DefaultThreshold < 0 {
		return nil, fmt.Errorf("%w: umbral por defecto negativo", domain.ErrInvalidInput)
	}

	// Acepta UTF-8 con o sin BOM (exportaciones de Excel)
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: CSV vacío", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, req := range []string{ColSKU, ColName} {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: faltan columnas obligatorias: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}

	res := &Result{}
	hubCache := map[string]*entity.Hub{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		line, _ := reader.FieldPos(0)
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Rows++

		row := rowOf(record, cols)
		if row.code == "" || row.name == "" {
			res.Skipped = append(res.Skipped, fmt.Sprintf("línea %d: falta sku o name", line))
			continue
		}
		threshold := opts.DefaultThreshold
		if n, err := strconv.Atoi(row.threshold); err == nil && n >= 0 {
			threshold = n
		}

		sku, err := im.upsertSKU(ctx, row, threshold, res)
		if err != nil {
			return res, fmt.Errorf("línea %d: %w", line, err)
		}
		if opts.ClearAssignments {
			if err := im.links.DeleteBySKU(ctx, sku.ID); err != nil {
				return res, fmt.Errorf("línea %d: %w", line, err)
			}
			res.AssignmentsReset++
		}
		if err := im.assign(ctx, sku, row.hubs, hubCache, res); err != nil {
			return res, fmt.Errorf("línea %d: %w", line, err)
		}
	}
	return res, nil
}

type csvRow struct {
	code, name, barcode, threshold string
	hubs                           []string
}

func rowOf(record []string, cols map[string]int) csvRow {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	row := csvRow{
		code:      get(ColSKU),
		name:      get(ColName),
		barcode:   get(ColBarcode),
		threshold: get(ColThreshold),
	}
	for _, h := range strings.Split(get(ColHubs), ",") {
		if h = strings.TrimSpace(h); h != "" {
			row.hubs = append(row.hubs, h)
		}
	}
	return row
}

func (im *SKUImporter) upsertSKU(ctx context.Context, row csvRow, threshold int, res *Result) (*entity.SKU, error) {
	now := time.Now().UTC()
	sku, err := im.skus.GetByCode(ctx, row.code)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		sku = &entity.SKU{
			ID:                uuid.New().String(),
			Code:              row.code,
			Name:              row.name,
			Barcode:           row.barcode,
			LowStockThreshold: threshold,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := im.skus.Create(ctx, sku); err != nil {
			return nil, err
		}
		res.SKUsCreated++
		return sku, nil
	}
	sku.Name = row.name
	sku.Barcode = row.barcode
	sku.LowStockThreshold = threshold
	sku.UpdatedAt = now
	if err := im.skus.Update(ctx, sku); err != nil {
		return nil, err
	}
	res.SKUsUpdated++
	return sku, nil
}

func (im *SKUImporter) assign(ctx context.Context, sku *entity.SKU, hubNames []string, cache map[string]*entity.Hub, res *Result) error {
	if len(hubNames) == 0 {
		return nil
	}
	existing, err := im.links.ListBySKU(ctx, sku.ID)
	if err != nil {
		return err
	}
	byHub := make(map[string]*entity.HubSKU, len(existing))
	for _, l := range existing {
		byHub[l.HubID] = l
	}

	for _, name := range hubNames {
		hub, err := im.hub(ctx, name, cache, res)
		if err != nil {
			return err
		}
		link := byHub[hub.ID]
		switch {
		case link == nil:
			link = &entity.HubSKU{HubID: hub.ID, SKUID: sku.ID, Active: true}
			created, err := im.links.Upsert(ctx, link)
			if err != nil {
				return err
			}
			if created {
				res.LinksCreated++
			}
			byHub[hub.ID] = link
		case !link.Active:
			link.Active = true
			if _, err := im.links.Upsert(ctx, link); err != nil {
				return err
			}
			res.LinksActivated++
		}
	}
	return nil
}

// hub obtiene o crea el hub por nombre.
func (im *SKUImporter) hub(ctx context.Context, name string, cache map[string]*entity.Hub, res *Result) (*entity.Hub, error) {
	if h, ok := cache[name]; ok {
		return h, nil
	}
	h, err := im.hubs.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if h == nil {
		now := time.Now().UTC()
		h = &entity.Hub{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
		if err := im.hubs.Create(ctx, h); err != nil {
			if !errors.Is(err, domain.ErrDuplicate) {
				return nil, err
			}
			if h, err = im.hubs.GetByName(ctx, name); err != nil || h == nil {
				return nil, fmt.Errorf("hub %q: %w", name, domain.ErrConflict)
			}
		} else {
			res.HubsCreated++
		}
	}
	cache[name] = h
	return h, nil
}

// ToResponse mapea el resultado al DTO HTTP.
func (r *Result) ToResponse() dto.ImportResultResponse {
	return dto.ImportResultResponse{
		Rows:             r.Rows,
		SKUsCreated:      r.SKUsCreated,
		SKUsUpdated:      r.SKUsUpdated,
		HubsCreated:      r.HubsCreated,
		LinksCreated:     r.LinksCreated,
		LinksActivated:   r.LinksActivated,
		AssignmentsReset: r.AssignmentsReset,
		Skipped:          r.Skipped,
	}
}
