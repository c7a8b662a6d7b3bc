package accounting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vkngwrapper/arsenal/subbuf"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
)

// Metrics publishes device memory claimed by regions, and the segment layout of regions, as prometheus
// metrics. Every series carries a "class" label so that regions serving different purposes (vertex data,
// uniforms, staging) can be told apart.
type Metrics struct {
	claimedBytes   *prometheus.GaugeVec
	claims         *prometheus.CounterVec
	releases       *prometheus.CounterVec
	regionSegments *prometheus.GaugeVec
	regionBytes    *prometheus.GaugeVec
	usedBytes      *prometheus.GaugeVec
}

// NewMetrics registers the region metrics with reg under the provided namespace
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	return &Metrics{
		claimedBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subbuf_claimed_bytes",
			Help:      "Bytes of device memory currently claimed by live regions.",
		}, []string{"class"}),
		claims: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subbuf_region_claims_total",
			Help:      "Total number of regions created.",
		}, []string{"class"}),
		releases: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subbuf_region_releases_total",
			Help:      "Total number of regions destroyed.",
		}, []string{"class"}),
		regionSegments: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subbuf_segments",
			Help:      "Number of allocated segments in observed regions.",
		}, []string{"class"}),
		regionBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subbuf_observed_region_bytes",
			Help:      "Total capacity of observed regions.",
		}, []string{"class"}),
		usedBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subbuf_used_bytes",
			Help:      "Bytes held by allocated segments in observed regions.",
		}, []string{"class"}),
	}
}

// ForClass returns a subbuf.MemoryAccounting that reports to this Metrics under the provided class. It
// is safe to share between regions and threads.
func (m *Metrics) ForClass(class string) subbuf.MemoryAccounting {
	return &classAccounting{
		claimedBytes: m.claimedBytes.WithLabelValues(class),
		claims:       m.claims.WithLabelValues(class),
		releases:     m.releases.WithLabelValues(class),
	}
}

// ObserveRegions gathers statistics from every provided region and publishes them under class, replacing
// whatever was last observed for that class. It reads region state, so it must be called on the thread
// that owns the regions.
func (m *Metrics) ObserveRegions(class string, regions ...*subbuf.Region) {
	var stats memutils.Statistics
	for _, region := range regions {
		if region == nil || region.IsDestroyed() {
			continue
		}

		region.AddStatistics(&stats)
	}

	m.regionSegments.WithLabelValues(class).Set(float64(stats.AllocationCount))
	m.regionBytes.WithLabelValues(class).Set(float64(stats.RegionBytes))
	m.usedBytes.WithLabelValues(class).Set(float64(stats.AllocationBytes))
}

type classAccounting struct {
	claimedBytes prometheus.Gauge
	claims       prometheus.Counter
	releases     prometheus.Counter
}

func (a *classAccounting) NotifyAllocated(bytes int) {
	a.claimedBytes.Add(float64(bytes))
	a.claims.Inc()
}

func (a *classAccounting) NotifyDeallocated(bytes int) {
	a.claimedBytes.Sub(float64(bytes))
	a.releases.Inc()
}
