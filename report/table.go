// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gitlab.com/jaxnet/chainsim/network"
	"gitlab.com/jaxnet/chainsim/node/blockchain"
	"gitlab.com/jaxnet/chainsim/types/chainhash"
)

// shortHashLen is how many hex characters of a hash the tables print.
const shortHashLen = 16

// ShortHash truncates the hex form of h for display.
func ShortHash(h chainhash.Hash) string {
	s := h.String()
	if len(s) <= shortHashLen {
		return s
	}
	return s[:shortHashLen] + "..."
}

// StatusTable renders one row per replica with its height, validity and
// findings, and the vote outcome in the footer.
func StatusTable(w io.Writer, st network.Status) {
	rows := make([][]string, 0, len(st.Reports))
	for i, r := range st.Reports {
		rows = append(rows, []string{
			strconv.Itoa(st.ReplicaID(i)),
			strconv.Itoa(r.Length),
			fmt.Sprintf("%v", r.Valid()),
			merkleState(r),
			findingsCell(r),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Replica", "Height", "Valid", "Merkle Root", "Findings"})
	table.SetFooter([]string{"", "", fmt.Sprintf("%d/%d", st.Valid, st.Size),
		"Majority", fmt.Sprintf("%v", st.Majority)})
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	table.AppendBulk(rows)
	table.Render()
}

// ChainTable renders the blocks of c with truncated hashes.
func ChainTable(w io.Writer, c *blockchain.Chain) {
	blocks := c.Blocks()
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, []string{
			strconv.Itoa(b.Index),
			b.Timestamp.UTC().Format(time.RFC3339),
			b.Data,
			strconv.FormatUint(b.Nonce, 10),
			ShortHash(b.PrevHash),
			ShortHash(b.Hash),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Index", "Timestamp", "Data", "Nonce", "Prev Hash", "Hash"})
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func merkleState(r *blockchain.Report) string {
	switch {
	case r.CachedRoot == nil:
		return "missing"
	case r.MerkleRootValid():
		return ShortHash(*r.CachedRoot)
	default:
		return "mismatch"
	}
}

func findingsCell(r *blockchain.Report) string {
	if len(r.Findings) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "\n")
}
