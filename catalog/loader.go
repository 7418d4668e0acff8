package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/covindicator/core"
)

// File is the on-disk form of a program catalog.
type File struct {
	Program  string       `yaml:"program"`
	Branches []BranchSpec `yaml:"branches"`
	Methods  []MethodSpec `yaml:"methods"`
}

type BranchSpec struct {
	ID        int `yaml:"id"`
	FirstLine int `yaml:"first_line"`
	LastLine  int `yaml:"last_line"`
}

// MethodSpec lists the instructions of one method. Lines has one entry per
// instruction; when it is empty Instructions gives a bare count.
type MethodSpec struct {
	Class        string `yaml:"class"`
	Method       string `yaml:"method"`
	Instructions int    `yaml:"instructions"`
	Lines        []int  `yaml:"lines"`
}

// LoadFile reads a YAML catalog and returns an analyzed pool.
func LoadFile(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return LoadBytes(data)
}

func LoadBytes(data []byte) (*Pool, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return f.Pool()
}

// Pool registers the file contents in a new pool in file order and marks it analyzed.
func (f *File) Pool() (*Pool, error) {
	p := NewPool()
	for _, b := range f.Branches {
		err := p.RegisterBranch(core.Branch{ID: core.BranchID(b.ID), FirstLine: b.FirstLine, LastLine: b.LastLine})
		if err != nil {
			return nil, err
		}
	}
	for _, m := range f.Methods {
		if m.Class == "" || m.Method == "" {
			return nil, fmt.Errorf("method entry needs class and method")
		}
		if len(m.Lines) > 0 {
			for _, line := range m.Lines {
				p.RegisterInstruction(m.Class, m.Method, line)
			}
			continue
		}
		for i := 0; i < m.Instructions; i++ {
			p.RegisterInstruction(m.Class, m.Method, 0)
		}
	}
	p.MarkAnalyzed()
	return p, nil
}
