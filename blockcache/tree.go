package blockcache

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Tree renders the live entries grouped by mode, one node per block with
// its profile counters.
func (bc *Cache) Tree() treeprint.Tree {
	infos := bc.Snapshot()
	st := bc.Stats()
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("block cache: %d entries, %d lookups, %d hits, %d evictions", len(infos), st.Lookups, st.Hits, st.Evictions))
	modes := make(map[string]treeprint.Tree)
	for _, in := range infos {
		branch, ok := modes[in.Mode]
		if !ok {
			branch = tree.AddBranch("mode " + in.Mode)
			modes[in.Mode] = branch
		}
		label := fmt.Sprintf("%08x", in.Addr)
		if in.End != 0 {
			label = fmt.Sprintf("%08x-%08x", in.Addr, in.End)
		}
		node := branch.AddMetaBranch(in.State, label)
		node.AddNode(fmt.Sprintf("insns=%d cost=%d runs=%d cycles=%d visits=%d", in.Insns, in.Cost, in.Runs, in.Cycles, in.Visits))
		switch {
		case in.Native:
			node.AddNode(fmt.Sprintf("code %d bytes", in.CodeSize))
		case in.Err != "":
			node.AddNode("interpreted: " + in.Err)
		}
	}
	return tree
}
