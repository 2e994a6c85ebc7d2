// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdiddy/research-discovery/internal/assess"
	"github.com/pdiddy/research-discovery/internal/llm"
	"github.com/pdiddy/research-discovery/internal/pipeline"
	"github.com/pdiddy/research-discovery/internal/pdftext"
	"github.com/pdiddy/research-discovery/internal/rank"
	"github.com/pdiddy/research-discovery/internal/reader"
	"github.com/pdiddy/research-discovery/internal/search"
	"github.com/pdiddy/research-discovery/internal/store"
	"github.com/pdiddy/research-discovery/internal/synthesize"
)

// signalContext is cancelled on SIGINT or SIGTERM so a run stops between
// ideas and keeps the ranking gathered so far.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newGenerator(readerModel bool) (llm.Generator, error) {
	gen, err := llm.NewGenerator(llm.FactoryConfigFrom(appConfig.AI, readerModel))
	if err != nil {
		return nil, fmt.Errorf("configuring %s backend: %w", appConfig.AI.Provider, err)
	}
	return gen, nil
}

// newEngine wires the search adapter, assessors, and synthesizer into a
// ranking engine that reports progress to w.
func newEngine(w io.Writer) (*rank.Engine, error) {
	gen, err := newGenerator(false)
	if err != nil {
		return nil, err
	}
	backend, err := search.NewBackend(appConfig.Search)
	if err != nil {
		return nil, err
	}

	adapter := search.NewAdapter(backend, appConfig.Search,
		search.WithLogger(logger), search.WithMetrics(metrics))
	logger.Debug().Str("backend", adapter.Backend()).Str("provider", gen.Provider()).Str("model", gen.Model()).Msg("ranking engine configured")
	novelty := assess.NewNoveltyAssessor(gen, assess.WithLogger(logger), assess.WithMetrics(metrics))
	doability := assess.NewDoabilityAssessor(gen, assess.WithLogger(logger), assess.WithMetrics(metrics))
	synth := synthesize.New(gen, synthesize.WithLogger(logger), synthesize.WithMetrics(metrics))

	return rank.NewEngine(adapter, novelty, doability, synth, appConfig.Ranking,
		rank.WithLogger(logger),
		rank.WithMetrics(metrics),
		rank.WithProgress(w),
		rank.WithResultLimit(appConfig.Search.ResultLimit),
	), nil
}

// newPipeline wires the full analysis pipeline over st.
func newPipeline(st *store.Store, w io.Writer) (*pipeline.Pipeline, error) {
	readerGen, err := newGenerator(true)
	if err != nil {
		return nil, err
	}
	engine, err := newEngine(w)
	if err != nil {
		return nil, err
	}
	rd := reader.New(readerGen, reader.WithLogger(logger), reader.WithMetrics(metrics))

	return pipeline.New(st, pdftext.ExtractFile, rd, engine,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithProgress(w),
	), nil
}

func openStore() (*store.Store, error) {
	return store.Open(appConfig.Store)
}
