// Package metrics exposes Prometheus counters for the service. The Collector
// satisfies the MetricsCollector interfaces of the auth, referral and wallet
// services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	signups     prometheus.Counter
	logins      *prometheus.CounterVec
	rotations   *prometheus.CounterVec
	codesIssued prometheus.Counter
	redemptions *prometheus.CounterVec
	credits     *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Total number of successful signups",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of successful logins",
		}, []string{"kind"}), // user, admin
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "token_rotations_total",
			Help: "Total number of refresh token rotation attempts",
		}, []string{"status"}), // success, rejected
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "referral_codes_issued_total",
			Help: "Total number of referral codes generated",
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "referral_redemptions_total",
			Help: "Total number of referral redemption attempts",
		}, []string{"status"}), // success, rejected, error
		credits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_coins_credited_total",
			Help: "Total coins credited to wallets",
		}, []string{"reason"}),
	}

	prometheus.MustRegister(
		c.signups,
		c.logins,
		c.rotations,
		c.codesIssued,
		c.redemptions,
		c.credits,
	)
	return c
}

func (c *Collector) RecordSignup()                { c.signups.Inc() }
func (c *Collector) RecordLogin(kind string)      { c.logins.WithLabelValues(kind).Inc() }
func (c *Collector) RecordRotation(status string) { c.rotations.WithLabelValues(status).Inc() }
func (c *Collector) RecordCodeIssued()            { c.codesIssued.Inc() }

func (c *Collector) RecordRedemption(status string) {
	c.redemptions.WithLabelValues(status).Inc()
}

func (c *Collector) RecordCredit(reason string, coins int) {
	c.credits.WithLabelValues(reason).Add(float64(coins))
}
