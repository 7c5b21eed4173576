// Package prommock provides helpers for extracting prometheus metrics in
// tests. These functions are only intended to be called from test files,
// as there is a dependency on the standard library testing package.
package prommock

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MustGather gathers every metric family registered on reg, failing the
// test on error.
func MustGather(tb testing.TB, reg *prometheus.Registry) []*dto.MetricFamily {
	tb.Helper()

	mfs, err := reg.Gather()
	if err != nil {
		tb.Fatalf("error gathering metrics: %v", err)
	}
	return mfs
}

// MustFindMetric returns the first metric in mfs whose family matches
// name and whose labels match the given labels, failing the test with
// helpful output of what was actually available if none matches.
func MustFindMetric(tb testing.TB, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	tb.Helper()

	var fam *dto.MetricFamily
	for _, mf := range mfs {
		if mf.GetName() == name {
			fam = mf
			break
		}
	}
	if fam == nil {
		tb.Logf("metric family with name %q not found", name)
		tb.Log("available names:")
		for _, mf := range mfs {
			tb.Logf("\t%s", mf.GetName())
		}
		tb.FailNow()
		return nil
	}

	for _, m := range fam.Metric {
		if labelsMatch(m, labels) {
			return m
		}
	}

	tb.Logf("found metric family with name %q, but metric with labels %v not found", name, labels)
	tb.FailNow()
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	if len(m.Label) != len(labels) {
		return false
	}
	for _, l := range m.Label {
		if labels[l.GetName()] != l.GetValue() {
			return false
		}
	}
	return true
}
