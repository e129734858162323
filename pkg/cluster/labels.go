package cluster

import (
	"sort"
	"strings"

	"github.com/slotswap/slotswap/pkg/domain"
)

// Label keys stamped on managed objects. Keys under "slotswap/" are this
// project's own; the "app.kubernetes.io/" ones follow the recommended-labels
// convention.
const (
	LabelAppName    = "app.kubernetes.io/name"
	LabelManagedBy  = "app.kubernetes.io/managed-by"
	LabelAppVersion = "app.kubernetes.io/version"

	// LabelSlot is on slot workloads and their pods; the stable service's
	// selector switches between its two values at cut-over.
	LabelSlot = "slotswap/slot"

	// LabelVersion records the released version label on slot workloads.
	LabelVersion = "slotswap/version"

	// LabelActiveSlot on the stable service is the active-state record.
	LabelActiveSlot = "slotswap/active-slot"

	managedBy = "slotswap"
)

// LabelSelector is an equality-based label selector.
type LabelSelector map[string]string

// QueryString renders the selector in list-request form, keys sorted.
func (ls LabelSelector) QueryString() string {
	if len(ls) == 0 {
		return ""
	}

	keys := make([]string, 0, len(ls))
	for k := range ls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := &strings.Builder{}
	for i, k := range keys {
		if 0 < i {
			b.WriteRune(',')
		}
		b.WriteString(k)
		b.WriteRune('=')
		b.WriteString(ls[k])
	}
	return b.String()
}

// selectorLabels is the minimal pod-matching label set of one slot.
// It doubles as the workload's spec.selector, so it must stay stable
// across releases (selectors are immutable on live workloads).
func selectorLabels(app string, slot domain.SlotName) map[string]string {
	return map[string]string{
		LabelAppName: app,
		LabelSlot:    string(slot),
	}
}

// workloadLabels is the full label set stamped on a slot workload and its
// pod template for one release.
func workloadLabels(app string, slot domain.SlotName, version string) map[string]string {
	l := selectorLabels(app, slot)
	l[LabelManagedBy] = managedBy
	l[LabelVersion] = version
	l[LabelAppVersion] = version
	return l
}
