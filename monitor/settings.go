// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package monitor

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// settings holds the monitor's user-configurable variables, the way the
// teacher's host package exposes a struct-tagged settings block editable
// with a single "set" command rather than one flag per variable.
type settings struct {
	MemDumpBytes    int    `doc:"default number of memory bytes to dump"`
	StepLines       int    `doc:"lines of register state to display while stepping"`
	NextMemDumpAddr uint16 `doc:"address of next memory dump"`
	TargetHz        uint64 `doc:"clock rate to throttle run() against, 0 for unthrottled"`
}

func newSettings() *settings {
	return &settings{
		MemDumpBytes: 64,
		StepLines:    20,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	t := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, t.NumField())
	for i := range settingsFields {
		f := t.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var str string
		switch f.kind {
		case reflect.Uint16:
			str = fmt.Sprintf("    %-16s $%04X", f.name, uint16(v.Uint()))
		case reflect.Uint64:
			str = fmt.Sprintf("    %-16s %d", f.name, v.Uint())
		default:
			str = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", str, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

func (s *settings) Set(key string, value uint64) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}
	if !reflect.TypeOf(value).ConvertibleTo(f.typ) {
		return errors.New("invalid type")
	}
	vOut := reflect.ValueOf(s).Elem().Field(f.index).Addr().Elem()
	vOut.Set(reflect.ValueOf(value).Convert(f.typ))
	return nil
}
