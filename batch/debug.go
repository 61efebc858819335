// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package batch

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"

	"github.com/ontresearch/qcat-go/scan"
)

// DebugSink writes the TSV/debug rows named by the external interface
// (spec §6) for a batch run: one row per read via BarcodeResult.TSVRow.
// The destination may be any path github.com/grailbio/base/file
// supports (local disk or an s3:// URL); a path ending in ".gz" is
// transparently gzip-compressed on the way out, matching the
// autodetect-by-suffix convention encoding/fastq/downsample.go follows
// on the read side.
type DebugSink struct {
	closer io.Closer
	gz     *gzip.Writer
	w      *csv.Writer
}

// NewDebugSink opens path for writing and returns a DebugSink ready to
// receive rows. Call Close when done to flush buffers and release the
// underlying file handle.
func NewDebugSink(ctx context.Context, path string) (*DebugSink, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "creating batch debug sink", path)
	}

	bw := bufio.NewWriter(out.Writer(ctx))
	s := &DebugSink{closer: &fileCloser{ctx: ctx, f: out, bw: bw}}

	var tw *csv.Writer
	if strings.HasSuffix(path, ".gz") {
		s.gz = gzip.NewWriter(bw)
		tw = csv.NewWriter(s.gz)
	} else {
		tw = csv.NewWriter(bw)
	}
	tw.Comma = '\t'
	s.w = tw
	return s, nil
}

// WriteResult appends one TSV row for result, using readName/readLength
// as the leading fields and comment as the trailing free-form field.
func (s *DebugSink) WriteResult(result scan.BarcodeResult, readName string, readLength int, comment string) error {
	return s.w.Write(result.TSVRow(readName, readLength, comment))
}

// WriteBatch appends one row per entry in results/reads, matching them
// by index and naming each row "read<i>"; comment is left empty.
// Mismatched slice lengths are an error, not a panic: a caller that
// miscounts its own batch should get a diagnosable failure, not a
// silent short write.
func (s *DebugSink) WriteBatch(results []scan.BarcodeResult, reads []string) error {
	if len(results) != len(reads) {
		return errors.Errorf("batch: %d results for %d reads", len(results), len(reads))
	}
	for i, r := range results {
		name := "read" + strconv.Itoa(i)
		if err := s.WriteResult(r, name, len(reads[i]), ""); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes every buffered row (and the gzip trailer, if any) and
// closes the underlying file handle.
func (s *DebugSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			return err
		}
	}
	return s.closer.Close()
}

// fileCloser adapts a grailbio/base/file.File plus its buffered writer
// into an io.Closer that flushes before closing.
type fileCloser struct {
	ctx context.Context
	f   file.File
	bw  *bufio.Writer
}

func (c *fileCloser) Close() error {
	if err := c.bw.Flush(); err != nil {
		return err
	}
	return c.f.Close(c.ctx)
}
