// Package metadata implements the metadata evidence layer: EXIF/XMP
// forensics, AI generator signature detection, and C2PA manifest presence.
package metadata

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bep/imagemeta"

	"github.com/verisight-ai/verisight/internal/evidence"
)

// Analyzer parses raw image bytes into a metadata evidence record. It never
// returns a missing layer: unparseable or absent metadata yields a baseline
// low-authenticity record, because "no metadata" is itself a signal.
type Analyzer struct {
	baseline float64
}

// New builds an Analyzer. baseline is the authenticity score assigned when
// no metadata can be read.
func New(baseline float64) *Analyzer {
	return &Analyzer{baseline: baseline}
}

// exifFields collects the camera-fingerprint tags we score on.
type exifFields struct {
	make         string
	model        string
	timestamp    string
	exposureTime bool
	fNumber      bool
	iso          bool
	focalLength  bool
	gps          bool
	lensModel    string
	software     string
	creatorTool  string
	description  string
	artist       string
	count        int
}

// authenticity weights; a file carrying every fingerprint scores 1.0.
// GPS is deliberately cheap: privacy-stripped camera photos commonly lack it.
const (
	wMakeModel = 0.30 // 0.15 each
	wTimestamp = 0.15
	wExposure  = 0.30 // exposure/f-number/iso, 0.10 each
	wFocal     = 0.10
	wGPS       = 0.10
	wLens      = 0.05
)

// Analyze parses the raw bytes and derives the evidence record.
func (a *Analyzer) Analyze(ctx context.Context, raw []byte) (*evidence.MetadataEvidence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields, parseErr := extractFields(raw)
	hasC2PA := scanC2PA(raw)

	if parseErr != nil || fields == nil || fields.count == 0 {
		ev := &evidence.MetadataEvidence{
			ExifAuthenticity: a.baseline,
			HasC2PA:          hasC2PA,
		}
		if parseErr != nil {
			ev.Anomalies = append(ev.Anomalies, fmt.Sprintf("metadata unreadable: %v", parseErr))
		} else {
			ev.Anomalies = append(ev.Anomalies, "no exif metadata present")
		}
		return ev, nil
	}

	signatures := detectSignatures(fields.software, fields.creatorTool, fields.description, fields.artist)

	ev := &evidence.MetadataEvidence{
		ExifAuthenticity: scoreAuthenticity(fields),
		HasC2PA:          hasC2PA,
		AIToolSignatures: signatures,
		Anomalies:        collectAnomalies(fields, signatures, hasC2PA),
		Software:         fields.software,
		FieldCount:       fields.count,
	}
	return ev, nil
}

// scoreAuthenticity is a weighted presence count over camera fingerprints.
func scoreAuthenticity(f *exifFields) float64 {
	score := 0.0
	if f.make != "" {
		score += wMakeModel / 2
	}
	if f.model != "" {
		score += wMakeModel / 2
	}
	if f.timestamp != "" {
		score += wTimestamp
	}
	if f.exposureTime {
		score += wExposure / 3
	}
	if f.fNumber {
		score += wExposure / 3
	}
	if f.iso {
		score += wExposure / 3
	}
	if f.focalLength {
		score += wFocal
	}
	if f.gps {
		score += wGPS
	}
	if f.lensModel != "" {
		score += wLens
	}
	return score
}

// collectAnomalies emits deterministic, human-readable flags in a fixed order.
func collectAnomalies(f *exifFields, signatures []string, hasC2PA bool) []string {
	var out []string
	if f.make == "" || f.model == "" {
		out = append(out, "missing camera make/model")
	}
	if f.timestamp == "" {
		out = append(out, "missing capture timestamp")
	}
	if !f.exposureTime && !f.fNumber && !f.iso {
		out = append(out, "missing exposure parameters")
	}
	for _, sig := range signatures {
		out = append(out, fmt.Sprintf("software tag names ai generator: %s", sig))
	}
	if hasC2PA {
		out = append(out, "c2pa manifest present")
	}
	return out
}

// wantedTags limits parsing to the tags the forensics need.
var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"Make":             true,
		"Model":            true,
		"DateTimeOriginal": true,
		"DateTime":         true,
		"ExposureTime":     true,
		"FNumber":          true,
		"ISOSpeedRatings":  true,
		"FocalLength":      true,
		"GPSLatitude":      true,
		"GPSLongitude":     true,
		"LensModel":        true,
		"Software":         true,
		"ImageDescription": true,
		"Artist":           true,
	},
	imagemeta.XMP: {
		"CreatorTool": true,
		"Software":    true,
	},
}

// extractFields parses EXIF/XMP from raw image bytes via imagemeta with a
// tag allowlist. A nil result with nil error means nothing useful was found.
func extractFields(raw []byte) (*exifFields, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	f := &exifFields{}
	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(raw),
		Sources: imagemeta.EXIF | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			handleTag(f, ti)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if f.count == 0 {
		return nil, nil
	}
	return f, nil
}

func handleTag(f *exifFields, ti imagemeta.TagInfo) {
	s := tagValueString(ti.Value)

	switch ti.Tag {
	case "Make":
		f.make = s
	case "Model":
		f.model = s
	case "DateTimeOriginal", "DateTime":
		if f.timestamp == "" {
			f.timestamp = s
		}
	case "ExposureTime":
		f.exposureTime = true
	case "FNumber":
		f.fNumber = true
	case "ISOSpeedRatings":
		f.iso = true
	case "FocalLength":
		f.focalLength = true
	case "GPSLatitude", "GPSLongitude":
		f.gps = true
	case "LensModel":
		f.lensModel = s
	case "Software":
		if f.software == "" {
			f.software = s
		}
	case "CreatorTool":
		f.creatorTool = s
	case "ImageDescription":
		f.description = s
	case "Artist":
		f.artist = s
	default:
		return
	}
	f.count++
}

// tagValueString extracts a string from a tag value; XMP values may arrive
// as string slices.
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// c2paMarkers are byte sequences that indicate an embedded C2PA/JUMBF
// manifest. Presence is a provenance signal only; verifying the credential
// chain cryptographically is out of scope.
var c2paMarkers = [][]byte{
	[]byte("c2pa"),
	[]byte("contentauth"),
	[]byte("jumdc2pa"),
}

func scanC2PA(raw []byte) bool {
	for _, m := range c2paMarkers {
		if bytes.Contains(raw, m) {
			return true
		}
	}
	return false
}
