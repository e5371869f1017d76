package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pricelens/config"
	"pricelens/models"
	"pricelens/repository"
	"pricelens/scraper"
	"pricelens/scheduler"
	"pricelens/services"

	"github.com/gorilla/mux"
)

type Handlers struct {
	cfg          *config.ScraperConfig
	selector     *scraper.SiteSelector
	extractor    *scraper.Extractor
	aggregator   *scraper.Aggregator
	taskManager  *scheduler.TaskManager
	watchRepo    *repository.WatchRepository
	snapshotRepo *repository.SnapshotRepository
	insights     *services.InsightService
	exporter     *services.ExportService

	// Completed comparisons kept in memory so export and insight
	// requests can reference them by ID without re-scraping.
	comparisons      map[string]*models.ComparisonResult
	comparisonsMutex sync.RWMutex
}

func NewHandlers(cfg *config.ScraperConfig, selector *scraper.SiteSelector, extractor *scraper.Extractor, aggregator *scraper.Aggregator) *Handlers {
	h := &Handlers{
		cfg:          cfg,
		selector:     selector,
		extractor:    extractor,
		aggregator:   aggregator,
		watchRepo:    repository.NewWatchRepository(),
		snapshotRepo: repository.NewSnapshotRepository(),
		insights:     services.NewInsightService(),
		exporter:     services.NewExportService(),
		comparisons:  make(map[string]*models.ComparisonResult),
	}

	h.taskManager = scheduler.NewTaskManager(h.runComparison, 3)

	return h
}

// Close shuts down the handlers' task manager.
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// GetTaskManager returns the task manager.
func (h *Handlers) GetTaskManager() *scheduler.TaskManager {
	return h.taskManager
}

// RunComparison exposes the comparison pipeline for the scheduler.
func (h *Handlers) RunComparison() scheduler.CompareFunc {
	return h.runComparison
}

// runComparison executes a comparison and caches the result by ID.
func (h *Handlers) runComparison(ctx context.Context, brand, product string) (*models.ComparisonResult, error) {
	result, err := h.aggregator.Compare(ctx, brand, product)
	if err != nil {
		return nil, err
	}

	h.comparisonsMutex.Lock()
	h.comparisons[result.ID] = result
	h.comparisonsMutex.Unlock()

	return result, nil
}

func (h *Handlers) getComparison(id string) (*models.ComparisonResult, bool) {
	h.comparisonsMutex.RLock()
	defer h.comparisonsMutex.RUnlock()

	result, ok := h.comparisons[id]
	return result, ok
}

// HealthCheck returns a simple health check response.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "pricelens",
		"version":   "1.0.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// GetStatus returns task and cache statistics.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.comparisonsMutex.RLock()
	cached := len(h.comparisons)
	h.comparisonsMutex.RUnlock()

	status := map[string]interface{}{
		"timestamp":          time.Now(),
		"system_health":      "healthy",
		"cached_comparisons": cached,
		"tasks":              h.taskManager.GetStats(),
		"regions":            config.RegionCodes(),
	}
	writeJSON(w, http.StatusOK, status)
}

// GetRegions lists the supported regions.
func (h *Handlers) GetRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"regions": config.Regions,
		"count":   len(config.Regions),
	})
}

// SearchBrand discovers candidate storefronts per region for a brand.
func (h *Handlers) SearchBrand(w http.ResponseWriter, r *http.Request) {
	var req models.SearchBrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BrandName == "" {
		writeError(w, http.StatusBadRequest, "Brand name is required")
		return
	}

	sites := h.selector.SelectBestSites(r.Context(), req.BrandName)
	if len(sites) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No sites found for brand %q", req.BrandName))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"brand":   req.BrandName,
		"regions": sites,
	})
}

// CompareProduct runs a cross-region comparison synchronously. Slow;
// most clients should use CompareProductAsync.
func (h *Handlers) CompareProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CompareProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BrandName == "" || req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "Brand and product are required")
		return
	}

	result, err := h.runComparison(r.Context(), req.BrandName, req.ProductName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"comparison": result,
		"table":      h.exporter.BuildRows(result),
	})
}

// CompareProductAsync queues a comparison and returns the task handle.
func (h *Handlers) CompareProductAsync(w http.ResponseWriter, r *http.Request) {
	var req models.CompareProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BrandName == "" || req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "Brand and product are required")
		return
	}

	task := h.taskManager.SubmitTask(req.BrandName, req.ProductName)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTaskStatus returns an async task by ID.
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	task, exists := h.taskManager.GetTask(vars["taskId"])
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GetTaskStats returns task manager statistics.
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.taskManager.GetStats())
}

// GetFeaturedProducts extracts top products from a brand's best site in
// one region. Region defaults to US.
func (h *Handlers) GetFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	brand := r.URL.Query().Get("brand")
	if brand == "" {
		writeError(w, http.StatusBadRequest, "brand query parameter is required")
		return
	}
	regionCode := r.URL.Query().Get("region")
	if regionCode == "" {
		regionCode = "US"
	}
	region, ok := config.RegionByCode(regionCode)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown region %q", regionCode))
		return
	}

	sites := h.selector.SelectRegionSites(r.Context(), brand, region)
	if len(sites) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No reachable site for %q in %s", brand, region.DisplayName))
		return
	}

	records := h.extractor.ExtractFromURL(r.Context(), sites[0].URL, h.cfg.MaxProductsPerSite)
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "No products found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"brand":    brand,
		"region":   region.Code,
		"site":     sites[0],
		"products": records,
	})
}

// ExportComparison streams a cached comparison as CSV.
func (h *Handlers) ExportComparison(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, ok := h.getComparison(vars["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "Comparison not found")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", result.ID))
	if err := h.exporter.WriteCSV(w, result); err != nil {
		log.Printf("Failed to export comparison %s: %v", result.ID, err)
	}
}

// GetComparisonInsights asks the insight service for a natural language
// summary of a cached comparison.
func (h *Handlers) GetComparisonInsights(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, ok := h.getComparison(vars["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "Comparison not found")
		return
	}

	insight, err := h.insights.GenerateInsight(r.Context(), result)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"comparison_id": result.ID,
		"summary":       services.BuildSummary(result),
		"insight":       insight,
	})
}

// AddWatch registers a brand+product pair for scheduled refresh.
func (h *Handlers) AddWatch(w http.ResponseWriter, r *http.Request) {
	var req models.AddWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BrandName == "" || req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "Brand and product are required")
		return
	}

	watch, err := h.watchRepo.AddWatch(req.BrandName, req.ProductName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add watch")
		return
	}

	writeJSON(w, http.StatusCreated, watch)
}

// GetWatches lists all active watches.
func (h *Handlers) GetWatches(w http.ResponseWriter, r *http.Request) {
	watches, err := h.watchRepo.GetActiveWatches()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get watches")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"watches": watches,
		"count":   len(watches),
	})
}

// DeleteWatch deactivates a watch.
func (h *Handlers) DeleteWatch(w http.ResponseWriter, r *http.Request) {
	id, err := watchID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid watch ID")
		return
	}

	if err := h.watchRepo.DeactivateWatch(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Watch removed"})
}

// GetWatchHistory returns a watch's stored price snapshots.
func (h *Handlers) GetWatchHistory(w http.ResponseWriter, r *http.Request) {
	id, err := watchID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid watch ID")
		return
	}

	watch, err := h.watchRepo.GetWatchByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	snapshots, err := h.snapshotRepo.GetHistory(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"watch":     watch,
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

func watchID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
