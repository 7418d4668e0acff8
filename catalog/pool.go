// Package catalog holds the structural catalogs of the program under test:
// every branch with the line span of its guarded block, and every instruction
// with its declaring method.
package catalog

import (
	"fmt"
	"sync"

	"github.com/snow-ghost/covindicator/core"
)

// Pool is the in-process registry filled by instrumentation. It only hands
// out catalogs once MarkAnalyzed has been called.
type Pool struct {
	mu           sync.RWMutex
	branches     []core.Branch
	branchIDs    map[core.BranchID]struct{}
	instructions []core.Instruction
	nextID       int
	analyzed     bool
}

func NewPool() *Pool {
	return &Pool{branchIDs: map[core.BranchID]struct{}{}}
}

// RegisterBranch adds a branch. Branch ids are unique per pool.
func (p *Pool) RegisterBranch(b core.Branch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, dup := p.branchIDs[b.ID]; dup {
		return fmt.Errorf("branch %d already registered", b.ID)
	}
	p.branchIDs[b.ID] = struct{}{}
	p.branches = append(p.branches, b)
	return nil
}

// RegisterInstruction adds an instruction and assigns the next instruction id.
func (p *Pool) RegisterInstruction(className, methodName string, line int) core.Instruction {
	p.mu.Lock()
	defer p.mu.Unlock()

	in := core.Instruction{
		ID:         p.nextID,
		ClassName:  className,
		MethodName: methodName,
		Line:       line,
	}
	p.nextID++
	p.instructions = append(p.instructions, in)
	return in
}

// MarkAnalyzed makes the catalogs available to readers.
func (p *Pool) MarkAnalyzed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analyzed = true
}

// Catalogs implements core.CatalogSource. The returned catalogs are copies.
func (p *Pool) Catalogs() (core.BranchCatalog, core.InstructionCatalog, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.analyzed {
		return nil, nil, core.ErrCatalogUnavailable
	}
	branches := append(BranchList(nil), p.branches...)
	instructions := append(InstructionList(nil), p.instructions...)
	return branches, instructions, nil
}

// Stats returns the number of registered branches and instructions.
func (p *Pool) Stats() (branches, instructions int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.branches), len(p.instructions)
}

// BranchList is a slice-backed core.BranchCatalog.
type BranchList []core.Branch

func (l BranchList) AllBranches() []core.Branch { return l }

// InstructionList is a slice-backed core.InstructionCatalog.
type InstructionList []core.Instruction

func (l InstructionList) AllInstructions() []core.Instruction { return l }
