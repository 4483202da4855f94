// Package devexport runs a build and publishes its artifacts.
//
// A Pipeline composes the building blocks in the sub-packages:
//
//   - build: the checked external build step
//   - git: revision lookup for tagged file names
//   - export: the artifact exporter (replace-all, copy-merge, move-merge)
//   - artifact: the export history store
//   - notify: lifecycle events
//   - reveal: opening the destination in a file browser
//
// Typical use:
//
//	p := &devexport.Pipeline{
//	    Build:    &build.Step{Command: settings.BuildCommand},
//	    Exporter: export.New(logger),
//	    Git:      gitCtx,
//	    History:  artifact.NewStore(artifact.Config{BaseDir: settings.HistoryDir}),
//	    Notifier: notify.New(notify.Config{Logger: logger}),
//	    Revealer: reveal.System{},
//	    Logger:   logger,
//	}
//	report, err := p.Run(ctx, devexport.Options{
//	    Request: export.Request{
//	        SourcePattern: "sdk/build/libs/*.jar",
//	        Destination:   "jars",
//	        Mode:          export.ModeReplaceAll,
//	        Strategy:      export.StrategyRevision,
//	    },
//	    Reveal: true,
//	})
package devexport
