/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SICQR/hotmess/internal/schedule"
)

// lineupFile is the on-disk YAML shape:
//
//	shows:
//	  - title: Drive Time Mess
//	    host: Mx Chaos
//	    days: [Friday]
//	    start: "17:00"
//	    end: "19:00"
type lineupFile struct {
	Shows schedule.Schedule `yaml:"shows"`
}

// Parse decodes a YAML lineup. A bare top-level list of shows is accepted too.
func Parse(data []byte) (schedule.Schedule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode lineup: %w", err)
	}
	if len(doc.Content) == 0 {
		return schedule.Schedule{}, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var shows schedule.Schedule
		if err := root.Decode(&shows); err != nil {
			return nil, fmt.Errorf("decode lineup: %w", err)
		}
		return shows, nil
	case yaml.MappingNode:
		var f lineupFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode lineup: %w", err)
		}
		if f.Shows == nil {
			f.Shows = schedule.Schedule{}
		}
		return f.Shows, nil
	default:
		return nil, errors.New("decode lineup: expected a list of shows or a shows: key")
	}
}

// Encode writes shows in the lineup file format.
func Encode(w io.Writer, shows schedule.Schedule) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lineupFile{Shows: shows}); err != nil {
		return fmt.Errorf("encode lineup: %w", err)
	}
	return enc.Close()
}

// File reads a YAML lineup from disk on every Load so edits apply without
// a restart.
type File struct {
	path string
}

// NewFile returns a source backed by the YAML file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file" }

func (f *File) Load(ctx context.Context) (schedule.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read lineup %s: %w", f.path, err)
	}
	shows, err := Parse(bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return shows, nil
}
