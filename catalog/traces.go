package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/covindicator/core"
)

// TraceFile is the on-disk form of recorded test executions.
type TraceFile struct {
	Tests []TraceSpec `yaml:"tests"`
}

// TraceSpec is one recorded execution. Methods maps each covered branchless
// method to its invocation count.
type TraceSpec struct {
	Name         string         `yaml:"name"`
	CoveredTrue  []int          `yaml:"covered_true"`
	CoveredFalse []int          `yaml:"covered_false"`
	NoExecution  map[int]int    `yaml:"no_execution"`
	Methods      map[string]int `yaml:"branchless_methods"`
}

// Trace converts the recorded test into an execution trace.
func (s TraceSpec) Trace() *core.ExecutionTrace {
	tr := core.NewExecutionTrace()
	for _, id := range s.CoveredTrue {
		tr.CoveredTrueBranches[core.BranchID(id)] = struct{}{}
	}
	for _, id := range s.CoveredFalse {
		tr.CoveredFalseBranches[core.BranchID(id)] = struct{}{}
	}
	for id, n := range s.NoExecution {
		tr.NoExecutionForConditionalNode[core.BranchID(id)] = n
	}
	for name, n := range s.Methods {
		tr.CoveredBranchlessMethods[name] = struct{}{}
		tr.MethodExecutionCount[name] = n
	}
	return tr
}

// NamedChromosome pairs an executed chromosome with the name it was recorded under.
type NamedChromosome struct {
	Name       string
	Chromosome *core.TestChromosome
}

// LoadTraces reads a trace file and returns one executed chromosome per test,
// ordered by name.
func LoadTraces(path string) ([]NamedChromosome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read traces %s: %w", path, err)
	}
	return LoadTracesBytes(data)
}

func LoadTracesBytes(data []byte) ([]NamedChromosome, error) {
	var f TraceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse traces: %w", err)
	}

	out := make([]NamedChromosome, 0, len(f.Tests))
	seen := map[string]struct{}{}
	for _, spec := range f.Tests {
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate test name %q", spec.Name)
		}
		seen[spec.Name] = struct{}{}

		c := core.NewTestChromosome()
		c.SetLastExecutionResult(core.NewExecutionResult(spec.Trace()))
		out = append(out, NamedChromosome{Name: spec.Name, Chromosome: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
