package cluster_test

import (
	"testing"

	"github.com/slotswap/slotswap/pkg/cluster"
)

func TestLabelSelector_QueryString(t *testing.T) {
	for label, testcase := range map[string]struct {
		selector cluster.LabelSelector
		expected string
	}{
		"an empty selector renders as an empty string": {
			selector: cluster.LabelSelector{},
			expected: "",
		},
		"a single label renders as key=value": {
			selector: cluster.LabelSelector{"slotswap/slot": "blue"},
			expected: "slotswap/slot=blue",
		},
		"labels are joined with commas, keys sorted": {
			selector: cluster.LabelSelector{
				"slotswap/slot":          "green",
				"app.kubernetes.io/name": "myapp",
			},
			expected: "app.kubernetes.io/name=myapp,slotswap/slot=green",
		},
	} {
		t.Run(label, func(t *testing.T) {
			if actual := testcase.selector.QueryString(); actual != testcase.expected {
				t.Errorf(
					"query string: (actual, expected) = (%s, %s)",
					actual, testcase.expected,
				)
			}
		})
	}
}
