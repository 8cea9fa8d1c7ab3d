package metrics_test

import (
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/z3phyrl/zeitop/internal/metrics"
)

var _ = Describe("Registry", func() {
	It("registers every collector exactly once", func() {
		reg := metrics.Registry()
		families, err := reg.Gather()
		Expect(err).NotTo(HaveOccurred())

		names := map[string]bool{}
		for _, f := range families {
			names[f.GetName()] = true
		}
		Expect(names).To(HaveKey("broker_clients_connected"))
		Expect(names).To(HaveKey("broker_services_registered"))
		Expect(names).To(HaveKey("broker_requests_routed_total"))
		Expect(names).To(HaveKey("broker_replies_dropped_total"))
		Expect(names).To(HaveKey("broker_broadcasts_published_total"))
		Expect(names).To(HaveKey("broker_diagnostics_sent_total"))
	})

	It("reflects counter increments", func() {
		before := testutil.ToFloat64(metrics.RequestsRouted)
		metrics.RequestsRouted.Inc()
		Expect(testutil.ToFloat64(metrics.RequestsRouted)).To(Equal(before + 1))
	})
})
