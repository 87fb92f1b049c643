// Copyright (c) 2022 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package report

import (
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/chainsim/network"
	"gitlab.com/jaxnet/chainsim/node/chaindata"
)

// ChainLevel is the block index of findings that concern the whole chain.
const ChainLevel = -1

// FindingRow is one validation problem of one replica.
type FindingRow struct {
	Replica     int    `csv:"replica"`
	Block       int    `csv:"block"`
	Code        string `csv:"code"`
	Description string `csv:"description"`
}

// FindingRows flattens the reports of st into rows, numbered by replica
// index. A Merkle root mismatch is reported with Block set to ChainLevel.
func FindingRows(st network.Status) []FindingRow {
	rows := make([]FindingRow, 0)
	for i, r := range st.Reports {
		if r == nil {
			continue
		}
		replica := st.ReplicaID(i)

		for _, f := range r.Findings {
			rows = append(rows, FindingRow{
				Replica:     replica,
				Block:       f.BlockIndex,
				Code:        f.Kind.String(),
				Description: f.Kind.Description(),
			})
		}

		if !r.MerkleRootValid() {
			rows = append(rows, FindingRow{
				Replica:     replica,
				Block:       ChainLevel,
				Code:        chaindata.ErrBadMerkleRoot.String(),
				Description: chaindata.ErrBadMerkleRoot.Description(),
			})
		}
	}
	return rows
}

// WriteFindings writes rows as CSV with a header line.
func WriteFindings(w io.Writer, rows []FindingRow) error {
	return gocsv.Marshal(rows, w)
}

// ReadFindings parses CSV written by WriteFindings.
func ReadFindings(r io.Reader) ([]FindingRow, error) {
	rows := make([]FindingRow, 0)
	err := gocsv.Unmarshal(r, &rows)
	return rows, err
}

// WriteFindingsCSV replaces the file at path with rows.
func WriteFindingsCSV(path string, rows []FindingRow) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to open findings file")
	}
	defer file.Close()

	return gocsv.MarshalFile(rows, file)
}
