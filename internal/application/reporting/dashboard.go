package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/jhoicas/hub-inventory/internal/application/auth"
	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
	"github.com/jhoicas/hub-inventory/pkg/logger"
)

const (
	// DashboardCachePrefix prefijo de las claves de caché del dashboard.
	DashboardCachePrefix = "dashboard:"
	// DefaultLowStockThreshold umbral del widget de stock bajo (totales por SKU).
	DefaultLowStockThreshold = 10

	dashboardLowStockMax = 10 // filas del widget de stock bajo
	dashboardRecent      = 3  // últimas entradas del ledger
)

var roleLabels = map[string]string{
	entity.RoleAdmin:    "Admin",
	entity.RoleHub:      "Hub Manager",
	entity.RoleRetail:   "Retail",
	entity.RoleSupplier: "Supplier",
}

// DashboardUseCase genera el resumen de la pantalla inicial.
//
// Los números dependen solo del alcance (hubs visibles), así que se cachean por scope.Key()
// y se invalidan como StockObserver tras cada cambio de stock confirmado. generation cuenta las
// invalidaciones: un resultado calculado antes de una invalidación no se deja en caché.
type DashboardUseCase struct {
	generation atomic.Uint64

	stock     repository.StockQueryRepository
	ledger    repository.LedgerQueryRepository
	hubs      repository.HubRepository
	cache     Cache
	ttl       time.Duration
	threshold int64
	log       *logger.Logger
}

// NewDashboardUseCase construye el caso de uso. cache nil = sin caché.
func NewDashboardUseCase(
	stock repository.StockQueryRepository,
	ledger repository.LedgerQueryRepository,
	hubs repository.HubRepository,
	cache Cache,
	ttl time.Duration,
	lowStockThreshold int,
	log *logger.Logger,
) *DashboardUseCase {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardUseCase{
		stock:     stock,
		ledger:    ledger,
		hubs:      hubs,
		cache:     cache,
		ttl:       ttl,
		threshold: int64(lowStockThreshold),
		log:       log.Named("dashboard"),
	}
}

var _ inventory.StockObserver = (*DashboardUseCase)(nil)

// dashboardStats parte cacheable del dashboard.
type dashboardStats struct {
	HubNames      []string                  `json:"hub_names"`
	TotalSKUs     int                       `json:"total_skus"`
	TotalQuantity int64                     `json:"total_quantity"`
	LowStock      []dto.LowStockItem        `json:"low_stock"`
	Recent        []dto.LedgerEntryResponse `json:"recent"`
}

// Get construye el DashboardResponse para el usuario indicado.
func (uc *DashboardUseCase) Get(ctx context.Context, p auth.Principal) (*dto.DashboardResponse, error) {
	scope := p.Scope()
	stats, err := uc.stats(ctx, scope)
	if err != nil {
		return nil, err
	}

	hubDisplay := "No hub assigned"
	switch len(stats.HubNames) {
	case 0:
	case 1:
		hubDisplay = stats.HubNames[0]
	default:
		hubDisplay = strings.Join(stats.HubNames, ", ")
	}

	welcome := fmt.Sprintf("Welcome %s! ", capitalize(p.Username))
	if len(stats.HubNames) > 0 {
		welcome += fmt.Sprintf("You’re managing: %s.", hubDisplay)
	} else {
		welcome += "You don’t have a hub assigned yet."
	}

	return &dto.DashboardResponse{
		Welcome:       welcome,
		RoleLabel:     RoleLabel(p.Role),
		HubDisplay:    hubDisplay,
		TotalSKUs:     stats.TotalSKUs,
		TotalQuantity: stats.TotalQuantity,
		LowStock:      stats.LowStock,
		RecentEntries: stats.Recent,
	}, nil
}

// StockChanged invalida todas las entradas del dashboard.
func (uc *DashboardUseCase) StockChanged(ctx context.Context, _ []inventory.StockChange) error {
	if uc.cache == nil {
		return nil
	}
	uc.generation.Add(1)
	return uc.cache.DeleteByPrefix(ctx, DashboardCachePrefix)
}

// Invalidate borra el caché tras cambios de catálogo: alta o renombre de hubs, alta o edición
// de SKUs, asignaciones e importaciones.
func (uc *DashboardUseCase) Invalidate(ctx context.Context) {
	if err := uc.StockChanged(ctx, nil); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar el caché del dashboard")
	}
}

func (uc *DashboardUseCase) stats(ctx context.Context, scope auth.Scope) (*dashboardStats, error) {
	key := DashboardCachePrefix + scope.Key()
	if uc.cache != nil {
		raw, ok, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
		} else if ok {
			var cached dashboardStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	gen := uc.generation.Load()
	stats, err := uc.compute(ctx, scope)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.store(ctx, key, gen, stats)
	}
	return stats, nil
}

// store guarda stats si no hubo invalidaciones desde gen. Si una llega entre la comprobación y el
// Set, la entrada recién escrita se borra.
func (uc *DashboardUseCase) store(ctx context.Context, key string, gen uint64, stats *dashboardStats) {
	if uc.generation.Load() != gen {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, raw, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
		return
	}
	if uc.generation.Load() != gen {
		if err := uc.cache.DeleteByPrefix(ctx, key); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo descartar una entrada obsoleta")
		}
	}
}

// compute lanza las tres lecturas en paralelo: hubs visibles, stock y ledger reciente.
func (uc *DashboardUseCase) compute(ctx context.Context, scope auth.Scope) (*dashboardStats, error) {
	type namesResult struct {
		names []string
		err   error
	}
	type stockResult struct {
		rows []repository.StockRow
		err  error
	}
	type recentResult struct {
		rows []repository.LedgerRow
		err  error
	}

	filter := scope.Filter()
	none := filter != nil && len(filter) == 0

	namesCh := make(chan namesResult, 1)
	stockCh := make(chan stockResult, 1)
	recentCh := make(chan recentResult, 1)

	go func() {
		names, err := visibleHubNames(ctx, uc.hubs, scope)
		namesCh <- namesResult{names, err}
	}()
	go func() {
		if none {
			stockCh <- stockResult{}
			return
		}
		rows, err := uc.stock.ListByHubs(ctx, filter)
		stockCh <- stockResult{rows, err}
	}()
	go func() {
		if none {
			recentCh <- recentResult{}
			return
		}
		rows, err := uc.ledger.List(ctx, repository.LedgerFilter{HubIDs: filter, Limit: dashboardRecent})
		recentCh <- recentResult{rows, err}
	}()

	names := <-namesCh
	stock := <-stockCh
	recent := <-recentCh

	if names.err != nil {
		return nil, fmt.Errorf("dashboard: hubs visibles: %w", names.err)
	}
	if stock.err != nil {
		return nil, fmt.Errorf("dashboard: stock: %w", stock.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: ledger: %w", recent.err)
	}

	stats := &dashboardStats{
		HubNames: names.names,
		LowStock: []dto.LowStockItem{},
		Recent:   []dto.LedgerEntryResponse{},
	}

	// Totales por SKU sobre todos los hubs visibles
	totals := map[string]*dto.LowStockItem{}
	for _, r := range stock.rows {
		stats.TotalQuantity += r.Quantity
		t, ok := totals[r.SKUID]
		if !ok {
			t = &dto.LowStockItem{SKUID: r.SKUID, SKUCode: r.SKUCode, SKUName: r.SKUName}
			totals[r.SKUID] = t
		}
		t.Quantity += r.Quantity
	}
	stats.TotalSKUs = len(totals)
	for _, t := range totals {
		if t.Quantity < uc.threshold {
			stats.LowStock = append(stats.LowStock, *t)
		}
	}
	sort.Slice(stats.LowStock, func(i, j int) bool {
		a, b := stats.LowStock[i], stats.LowStock[j]
		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}
		return a.SKUCode < b.SKUCode
	})
	if len(stats.LowStock) > dashboardLowStockMax {
		stats.LowStock = stats.LowStock[:dashboardLowStockMax]
	}

	for _, r := range recent.rows {
		stats.Recent = append(stats.Recent, ToLedgerEntryResponse(r))
	}
	return stats, nil
}

// RoleLabel etiqueta legible del rol.
func RoleLabel(role string) string {
	if label, ok := roleLabels[role]; ok {
		return label
	}
	if role == "" {
		return "Hub Manager"
	}
	return role
}

// visibleHubNames nombres de los hubs visibles, ordenados por nombre.
func visibleHubNames(ctx context.Context, hubs repository.HubRepository, scope auth.Scope) ([]string, error) {
	list, err := hubs.List(ctx)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, h := range list {
		if scope.Allows(h.ID) {
			names = append(names, h.Name)
		}
	}
	return names, nil
}

// capitalize primera letra en mayúscula y el resto en minúscula.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
