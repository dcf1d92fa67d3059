package testutil

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dicompiler/internal/codegen"
	"github.com/specialistvlad/dicompiler/internal/compiler"
	"github.com/specialistvlad/dicompiler/internal/schema"
)

// Recorder collects hook calls across extensions in the order they happen.
type Recorder struct {
	events []string
}

// Record appends an event.
func (r *Recorder) Record(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// Events returns the recorded events.
func (r *Recorder) Events() []string {
	return append([]string(nil), r.events...)
}

// IndexOf returns the position of event, or -1.
func (r *Recorder) IndexOf(event string) int {
	for i, e := range r.events {
		if e == event {
			return i
		}
	}
	return -1
}

// RecordingExtension records every hook as "<hook>:<name>". Hooks can be
// extended through the On* fields.
type RecordingExtension struct {
	compiler.Base
	Recorder *Recorder
	Schema   schema.Schema

	OnLoad         func(ctx context.Context, ext *RecordingExtension) error
	OnBefore       func(ctx context.Context, ext *RecordingExtension) error
	OnAfterCompile func(ctx context.Context, ext *RecordingExtension, class *codegen.Class) error
}

// NewRecording creates a RecordingExtension reporting to r.
func NewRecording(r *Recorder) *RecordingExtension {
	return &RecordingExtension{Recorder: r}
}

func (e *RecordingExtension) ConfigSchema() schema.Schema {
	return e.Schema
}

func (e *RecordingExtension) SetConfig(cfg schema.Config) {
	e.Base.SetConfig(cfg)
	e.Recorder.Record("setConfig:%s", e.Name())
}

func (e *RecordingExtension) LoadConfiguration(ctx context.Context) error {
	e.Recorder.Record("load:%s", e.Name())
	if e.OnLoad != nil {
		return e.OnLoad(ctx, e)
	}
	return nil
}

func (e *RecordingExtension) BeforeCompile(ctx context.Context) error {
	e.Recorder.Record("before:%s", e.Name())
	if e.OnBefore != nil {
		return e.OnBefore(ctx, e)
	}
	return nil
}

func (e *RecordingExtension) AfterCompile(ctx context.Context, class *codegen.Class) error {
	e.Recorder.Record("after:%s", e.Name())
	if e.OnAfterCompile != nil {
		return e.OnAfterCompile(ctx, e, class)
	}
	return nil
}

// MetaRecordingExtension is a RecordingExtension processed first.
type MetaRecordingExtension struct {
	RecordingExtension
}

// NewMetaRecording creates a MetaRecordingExtension reporting to r.
func NewMetaRecording(r *Recorder) *MetaRecordingExtension {
	return &MetaRecordingExtension{RecordingExtension: RecordingExtension{Recorder: r}}
}

func (e *MetaRecordingExtension) ProcessFirst() {}

// LateRecordingExtension is a RecordingExtension loaded last.
type LateRecordingExtension struct {
	RecordingExtension
}

// NewLateRecording creates a LateRecordingExtension reporting to r.
func NewLateRecording(r *Recorder) *LateRecordingExtension {
	return &LateRecordingExtension{RecordingExtension: RecordingExtension{Recorder: r}}
}

func (e *LateRecordingExtension) LoadLast() {}
