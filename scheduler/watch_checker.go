package scheduler

import (
	"context"
	"log"

	"pricelens/repository"
	"pricelens/services"

	"github.com/robfig/cron/v3"
)

// WatchChecker refreshes saved brand watches on a schedule and stores
// the resulting regional prices as snapshots.
type WatchChecker struct {
	cron         *cron.Cron
	watchRepo    *repository.WatchRepository
	snapshotRepo *repository.SnapshotRepository
	compareFunc  CompareFunc
}

func NewWatchChecker(compareFunc CompareFunc) *WatchChecker {
	return &WatchChecker{
		cron:         cron.New(cron.WithSeconds()),
		watchRepo:    repository.NewWatchRepository(),
		snapshotRepo: repository.NewSnapshotRepository(),
		compareFunc:  compareFunc,
	}
}

// Start schedules watch refreshes every 12 hours and runs one pass
// immediately on startup.
func (wc *WatchChecker) Start() {
	_, err := wc.cron.AddFunc("0 0 */12 * * *", wc.checkAllWatches)
	if err != nil {
		log.Printf("Failed to schedule watch checker: %v", err)
		return
	}

	go wc.checkAllWatches()

	wc.cron.Start()
	log.Println("Watch checker scheduled to run every 12 hours")
}

// Stop stops the scheduler.
func (wc *WatchChecker) Stop() {
	if wc.cron != nil {
		wc.cron.Stop()
	}
}

// checkAllWatches refreshes every active watch sequentially. Watches
// run one at a time to keep the scrape load polite.
func (wc *WatchChecker) checkAllWatches() {
	watches, err := wc.watchRepo.GetActiveWatches()
	if err != nil {
		log.Printf("Failed to load watches: %v", err)
		return
	}
	if len(watches) == 0 {
		return
	}

	log.Printf("Refreshing %d brand watches", len(watches))
	for _, watch := range watches {
		wc.checkWatch(watch.ID, watch.BrandName, watch.ProductName)
	}
}

func (wc *WatchChecker) checkWatch(watchID int, brand, product string) {
	result, err := wc.compareFunc(context.Background(), brand, product)
	if err != nil {
		log.Printf("Watch %d (%s / %s) refresh failed: %v", watchID, brand, product, err)
		return
	}

	for _, entry := range result.Entries {
		if err := wc.snapshotRepo.AddSnapshot(watchID, entry); err != nil {
			log.Printf("Failed to store snapshot for watch %d: %v", watchID, err)
		}
	}
	if err := wc.watchRepo.MarkChecked(watchID); err != nil {
		log.Printf("Failed to mark watch %d checked: %v", watchID, err)
	}

	summary := services.BuildSummary(result)
	log.Printf("Watch %d refreshed: %d regions, min %.2f in %s",
		watchID, summary.TotalEntries, summary.MinPrice, summary.CheapestRegion)
}
