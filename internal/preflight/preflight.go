package preflight

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"fashionset/internal/logging"
)

// Plan lists the paths one pipeline run depends on.
type Plan struct {
	Files  map[string]string
	Dirs   map[string]string
	Output string
}

// Run executes every check in plan in a stable order.
func Run(plan Plan) []Result {
	var results []Result
	for _, name := range sortedKeys(plan.Files) {
		results = append(results, CheckInput(name, plan.Files[name], KindFile))
	}
	for _, name := range sortedKeys(plan.Dirs) {
		results = append(results, CheckInput(name, plan.Dirs[name], KindDir))
	}
	if plan.Output != "" {
		results = append(results, CheckOutput("output directory", plan.Output))
	}
	return results
}

// Err folds failed results into one error. Failed inputs wrap ErrInputMissing.
func Err(results []Result) error {
	var inputs, others []string
	for _, r := range results {
		if r.Passed {
			continue
		}
		line := r.Name + ": " + r.Detail
		if r.Input {
			inputs = append(inputs, line)
		} else {
			others = append(others, line)
		}
	}
	var errs []error
	if len(inputs) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInputMissing, strings.Join(inputs, "; ")))
	}
	if len(others) > 0 {
		errs = append(errs, fmt.Errorf("preflight: %s", strings.Join(others, "; ")))
	}
	return errors.Join(errs...)
}

// Check runs plan, logs each outcome and the free space on the output
// filesystem, and returns Err of the results.
func Check(plan Plan, logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logger, "preflight")
	results := Run(plan)
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
		}
	}
	if err := Err(results); err != nil {
		return err
	}
	if plan.Output != "" {
		if free, err := FreeBytes(plan.Output); err == nil {
			logger.Info("output filesystem",
				logging.Path(plan.Output),
				logging.String("free", humanize.IBytes(free)),
			)
		} else {
			logging.WarnWithContext(logger, "free space probe failed", "preflight_statfs",
				logging.Error(err),
				logging.String(logging.FieldImpact, "free space not reported"),
			)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
