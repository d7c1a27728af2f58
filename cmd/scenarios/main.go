// Command scenarios runs the six end-to-end inference scenarios and prints
// a one-line summary of each, for manual inspection outside the test suite.
package main

import (
	"fmt"
	"log"

	"github.com/katalvlaran/blocksbm/examples"
)

func main() {
	e1, err := examples.RunE1()
	must(err)
	fmt.Printf("E1 triangle/two-blocks: virtual_move=%.6f recomputed=%.6f\n", e1.VirtualMoveDelta, e1.RecomputedDelta)

	e2, err := examples.RunE2()
	must(err)
	fmt.Printf("E2 singleton move: proposed=%d sizes=%v edges=%d\n", e2.ProposedBlock, e2.BlockSizes, len(e2.Edges))

	e3, err := examples.RunE3()
	must(err)
	fmt.Printf("E3 constraint barrier: move_err=%v virtual_move=%.6f\n", e3.MoveErr, e3.VirtualMoveDelta)

	e4, err := examples.RunE4()
	must(err)
	fmt.Printf("E4 coupled collapse: upper_still_has_block=%v upper_size=%.1f combined_entropy=%.6f\n",
		e4.UpperStillHasEmptiedBlock, e4.UpperBlockSizeAfter, e4.PropagatedEntropy)

	e5, err := examples.RunE5()
	must(err)
	fmt.Printf("E5 deep copy: original_block=%d copy_block=%d checks_ok=%v/%v\n",
		e5.OriginalBlockOfMovedVertex, e5.CopyBlockOfMovedVertex, e5.OriginalChecksOK, e5.CopyChecksOK)

	e6, err := examples.RunE6(10000, 1, 2)
	must(err)
	fmt.Printf("E6 MCMC reversibility: proposed=%d accepted=%d checks_ok=%v\n", e6.Proposed, e6.Accepted, e6.ChecksOK)
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
