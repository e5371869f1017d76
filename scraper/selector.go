package scraper

import (
	"context"
	"log"
	"sort"

	"pricelens/config"
	"pricelens/models"
)

// SiteSelector orchestrates probing and classification across every
// region in the registry and ranks the results.
type SiteSelector struct {
	prober     *Prober
	classifier *Classifier
	cfg        *config.ScraperConfig
}

// NewSiteSelector wires a selector from its collaborators.
func NewSiteSelector(prober *Prober, classifier *Classifier, cfg *config.ScraperConfig) *SiteSelector {
	return &SiteSelector{prober: prober, classifier: classifier, cfg: cfg}
}

// SelectBestSites discovers, classifies and ranks sites for a brand in
// every region. Regions with zero reachable sites are omitted from the
// returned map; callers treat a missing key as "no coverage".
func (s *SiteSelector) SelectBestSites(ctx context.Context, brandName string) map[string][]models.Site {
	selected := make(map[string][]models.Site)

	for _, region := range config.Regions {
		if ctx.Err() != nil {
			break
		}
		sites := s.selectRegion(ctx, brandName, region)
		if len(sites) > 0 {
			selected[region.Code] = sites
		}
	}

	log.Printf("Site discovery for %q covered %d of %d regions", brandName, len(selected), len(config.Regions))
	return selected
}

// SelectRegionSites discovers and ranks sites for a brand in a single
// region.
func (s *SiteSelector) SelectRegionSites(ctx context.Context, brandName string, region config.Region) []models.Site {
	return s.selectRegion(ctx, brandName, region)
}

func (s *SiteSelector) selectRegion(ctx context.Context, brandName string, region config.Region) []models.Site {
	urls := s.prober.Probe(ctx, brandName, region)
	if len(urls) == 0 {
		return nil
	}

	sites := make([]models.Site, 0, len(urls))
	for _, siteURL := range urls {
		siteType := s.classifier.Classify(siteURL, brandName)
		sites = append(sites, models.Site{
			URL:        siteURL,
			Domain:     ExtractDomain(siteURL),
			Type:       siteType,
			RegionCode: region.Code,
			Score:      Score(siteType),
		})
	}

	// Stable sort preserves discovery order between equal scores.
	sort.SliceStable(sites, func(i, j int) bool {
		return sites[i].Score > sites[j].Score
	})

	if max := s.cfg.MaxSitesPerRegion; max > 0 && len(sites) > max {
		sites = sites[:max]
	}
	return sites
}
