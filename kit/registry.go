// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package kit

import (
	"context"
	"embed"
	"io/ioutil"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"gopkg.in/yaml.v3"

	"github.com/ontresearch/qcat-go/util"
)

//go:embed kits/*.yml
var defaultKits embed.FS

// minBarcodeSeparation is the Levenshtein distance below which two
// barcodes configured for the same placeholder in the same kit are
// flagged as implausibly close. This is a registry-load diagnostic, not
// a validation failure: barcode sets are data supplied by the kit
// vendor, not code, so a close pair is logged and kept.
const minBarcodeSeparation = 3

// Registry is an immutable, process-lifetime collection of adapter
// layouts, loaded once at startup and read-only thereafter.
type Registry struct {
	layouts []*AdapterLayout
}

// barcodeFile mirrors one entry of a kit file's barcode_set_N list.
type barcodeFile struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Sequence  string `yaml:"sequence"`
	FwdStrand bool   `yaml:"fwd_strand"`
}

// modelFile mirrors the optional "model" block used by alternate
// (guppy/brill) backends; this module never interprets it, it only
// carries it through for callers that do.
type modelFile struct {
	File   string `yaml:"file"`
	Length int    `yaml:"length"`
}

// kitFile mirrors one kit layout YAML document.
type kitFile struct {
	Kit         string        `yaml:"kit"`
	Sequence    string        `yaml:"sequence"`
	Description string        `yaml:"description"`
	AutoDetect  bool          `yaml:"auto_detect"`
	Active      *bool         `yaml:"active"`
	TrimOffset  int           `yaml:"trim_offset"`
	BarcodeSet1 []barcodeFile `yaml:"barcode_set_1"`
	BarcodeSet2 []barcodeFile `yaml:"barcode_set_2"`
	Model       *modelFile    `yaml:"model"`
}

func toBarcodes(entries []barcodeFile) []Barcode {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Barcode, len(entries))
	for i, e := range entries {
		out[i] = Barcode{Name: e.Name, ID: e.ID, Sequence: e.Sequence, FwdStrand: e.FwdStrand}
	}
	return out
}

// LoadRegistry loads every *.yml file found under dir (which may be a
// local path or any URL scheme github.com/grailbio/base/file supports,
// e.g. an s3:// prefix). Files with active: false are skipped. A
// malformed file is logged and skipped; the rest of the directory still
// loads. An invalid layout (bad template, barcode/placeholder length
// mismatch) is likewise logged and skipped, matching the "malformed
// layout is never fatal to the registry" error-handling policy.
func LoadRegistry(ctx context.Context, dir string) (*Registry, error) {
	lister := file.List(ctx, dir, false /*recursive*/)
	var paths []string
	for lister.Scan() {
		if hasYMLSuffix(lister.Path()) {
			paths = append(paths, lister.Path())
		}
	}
	if err := lister.Err(); err != nil {
		return nil, errors.E(err, "listing kit directory", dir)
	}

	r := &Registry{}
	for _, p := range paths {
		layout, err := loadKitFile(ctx, p)
		if err != nil {
			log.Error.Printf("kit: skipping %s: %v", p, err)
			continue
		}
		if layout == nil {
			continue // active: false
		}
		r.layouts = append(r.layouts, layout)
	}
	r.checkBarcodeSeparation()
	return r, nil
}

// LoadRegistryFromDir is LoadRegistry with a background context,
// for callers (CLIs, notebooks) with no ambient context.Context of
// their own, matching the vcontext.Background idiom used to read
// fixed input files in cmd/bio-bam-sort/sorter.
func LoadRegistryFromDir(dir string) (*Registry, error) {
	return LoadRegistry(vcontext.Background(), dir)
}

// LoadDefaultRegistry loads the kit layouts bundled into the binary,
// used when the caller does not supply an external kit directory.
func LoadDefaultRegistry() *Registry {
	entries, err := defaultKits.ReadDir("kits")
	if err != nil {
		log.Panicf("kit: embedded kit directory missing: %v", err)
	}
	r := &Registry{}
	for _, e := range entries {
		if e.IsDir() || !hasYMLSuffix(e.Name()) {
			continue
		}
		data, err := defaultKits.ReadFile("kits/" + e.Name())
		if err != nil {
			log.Error.Printf("kit: skipping embedded %s: %v", e.Name(), err)
			continue
		}
		layout, err := parseKitFile(data)
		if err != nil {
			log.Error.Printf("kit: skipping embedded %s: %v", e.Name(), err)
			continue
		}
		if layout == nil {
			continue
		}
		r.layouts = append(r.layouts, layout)
	}
	r.checkBarcodeSeparation()
	return r
}

func loadKitFile(ctx context.Context, path string) (*AdapterLayout, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "opening kit file", path)
	}
	defer f.Close(ctx) // nolint:errcheck

	data, err := ioutil.ReadAll(f.Reader(ctx))
	if err != nil {
		return nil, errors.E(err, "reading kit file", path)
	}
	return parseKitFile(data)
}

func parseKitFile(data []byte) (*AdapterLayout, error) {
	var kf kitFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, errors.E(err, "parsing kit file")
	}
	if kf.Active != nil && !*kf.Active {
		return nil, nil
	}

	model, modelLen := "", 0
	if kf.Model != nil {
		model, modelLen = kf.Model.File, kf.Model.Length
	}

	return NewAdapterLayout(
		kf.Kit,
		kf.Sequence,
		kf.Description,
		toBarcodes(kf.BarcodeSet1),
		toBarcodes(kf.BarcodeSet2),
		kf.AutoDetect,
		kf.TrimOffset,
		model,
		modelLen,
	)
}

func hasYMLSuffix(path string) bool {
	return len(path) > 4 && path[len(path)-4:] == ".yml"
}

// checkBarcodeSeparation implements the barcode-separation diagnostic:
// for each placeholder set of each layout, warn (never fail) if any two
// barcodes are fewer than minBarcodeSeparation edits apart,
// accounting for the adapter bases immediately downstream of the
// placeholder the way util.Levenshtein does.
func (r *Registry) checkBarcodeSeparation() {
	for _, l := range r.layouts {
		for _, idx := range []int{0, 1} {
			set := l.BarcodeSet(idx)
			if len(set) < 2 {
				continue
			}
			seqs := make([]util.NamedSequence, len(set))
			for i, bc := range set {
				seqs[i] = util.NamedSequence{ID: bc.ID, Name: bc.Name, Sequence: bc.Sequence}
			}
			downstream := l.DownstreamContext(16, idx)
			for _, pair := range util.FindClosePairs(seqs, downstream, minBarcodeSeparation) {
				log.Error.Printf("kit %s: barcodes %s and %s are only %d edits apart",
					l.Kit, pair.A.Name, pair.B.Name, pair.Distance)
			}
		}
	}
}

// Lookup returns every layout registered under the given kit name,
// matched case-insensitively (the original matches
// kit_name.lower() == layout.kit.lower()), for parity with
// Scanner.layoutsFor's strings.EqualFold restriction.
func (r *Registry) Lookup(kit string) []*AdapterLayout {
	var out []*AdapterLayout
	for _, l := range r.layouts {
		if strings.EqualFold(l.Kit, kit) {
			out = append(out, l)
		}
	}
	return out
}

// AutoDetectable returns every layout eligible for kit auto-detection.
func (r *Registry) AutoDetectable() []*AdapterLayout {
	var out []*AdapterLayout
	for _, l := range r.layouts {
		if l.AutoDetect {
			out = append(out, l)
		}
	}
	return out
}

// All returns every loaded layout, in load order.
func (r *Registry) All() []*AdapterLayout {
	return r.layouts
}

// Names returns every distinct kit name known to the registry, plus the
// leading pseudo-name "Auto".
func (r *Registry) Names() []string {
	names := []string{"Auto"}
	seen := map[string]bool{}
	for _, l := range r.layouts {
		if !seen[l.Kit] {
			seen[l.Kit] = true
			names = append(names, l.Kit)
		}
	}
	return names
}

// Describe returns a kit-name to description map, including the
// pseudo-kit "Auto".
func (r *Registry) Describe() map[string]string {
	out := map[string]string{"Auto": "Auto detect kit"}
	for _, l := range r.layouts {
		if _, ok := out[l.Kit]; !ok {
			out[l.Kit] = l.Description
		}
	}
	return out
}
