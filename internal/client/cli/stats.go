package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const metricPrefix = "gophbucket_"

// Stats prints the client's transfer and session counters.
func (a *App) Stats(ctx context.Context) error {
	families, err := a.gatherer.Gather()
	if err != nil {
		return a.fail(ctx, "gather metrics", err)
	}

	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metricPrefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := strings.TrimPrefix(mf.GetName(), metricPrefix)
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%-40s %v", name, m.GetCounter().GetValue()))
		}
	}

	if len(lines) == 0 {
		printlnFn("No activity yet")
		return nil
	}
	sort.Strings(lines)
	for _, l := range lines {
		printlnFn(l)
	}
	return nil
}
