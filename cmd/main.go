/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"kdex.dev/app-header/internal/dom"
	"kdex.dev/app-header/internal/handler"
	"kdex.dev/app-header/internal/header"
	"kdex.dev/app-header/internal/i18n"
	"kdex.dev/app-header/internal/mime"
	"kdex.dev/app-header/internal/page"
	"kdex.dev/app-header/internal/settings"
	"kdex.dev/app-header/internal/web/server"
)

var setupLog = ctrl.Log.WithName("setup")

type pageFlags struct {
	handlers    []string
	optionsFile string
	pageFile    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := zap.Options{
		Development: true,
	}
	goFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	opts.BindFlags(goFlags)

	root := &cobra.Command{
		Use:          "app-header",
		Short:        "Render and serve pages carrying an application header",
		SilenceUsage: true,
	}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	}
	root.PersistentFlags().AddGoFlagSet(goFlags)

	root.AddCommand(newRenderCommand(), newServeCommand())

	return root
}

func (f *pageFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.pageFile, "page", "", "The HTML page to place the header in.")
	flags.StringVar(&f.optionsFile, "options", "", "A YAML or JSON file with header options.")
	flags.StringSliceVar(&f.handlers, "handler", nil, "Register a named handler that only logs when called (can be used "+
		"multiple times).")
}

func newRenderCommand() *cobra.Command {
	var f pageFlags
	var mode string
	var locale string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the page with the header rendered into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := ctrl.Log.WithName("render")

			newPage, err := f.factory(log)
			if err != nil {
				return err
			}

			p, err := newPage(locale)
			if err != nil {
				return err
			}

			p.Listen()
			if err := p.Ready(); err != nil {
				return err
			}

			if mode != "" {
				err := p.Do(func(h *header.AppHeader) error {
					return h.SetMode(settings.Mode(mode), settings.Settings{})
				})
				if err != nil {
					return err
				}
			}

			return p.Document().Render(cmd.OutOrStdout())
		},
	}

	f.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("page")
	cmd.Flags().StringVar(&mode, "mode", "", "Switch to this mode after the first render.")
	cmd.Flags().StringVar(&locale, "locale", "", "The locale used when the options do not name one.")

	return cmd
}

func newServeCommand() *cobra.Command {
	var f pageFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page and drive its header over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := ctrl.Log.WithName("server")

			newPage, err := f.factory(log)
			if err != nil {
				return err
			}

			translations, err := i18n.NewTranslations(i18n.DefaultLanguage, i18n.Strings)
			if err != nil {
				return err
			}

			ctx := ctrl.SetupSignalHandler()
			srv := server.New(addr, newPage, translations, log)

			go func() {
				<-ctx.Done()
				setupLog.Info("shutting down web server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					setupLog.Error(err, "problem shutting down web server")
				}
			}()

			setupLog.Info("starting web server", "address", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}

			return nil
		},
	}

	f.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("page")
	cmd.Flags().StringVar(&addr, "webserver-bind-address", ":8090", "The address the webserver binds to.")

	return cmd
}

// factory reads the page and options once and returns a builder of fresh pages.
func (f *pageFlags) factory(log logr.Logger) (server.PageFactory, error) {
	markup, err := readPage(f.pageFile)
	if err != nil {
		return nil, err
	}

	options := settings.Settings{}
	if f.optionsFile != "" {
		options, err = settings.LoadFile(f.optionsFile)
		if err != nil {
			return nil, err
		}
	}

	registry := handler.Registry{}
	for _, name := range f.handlers {
		registry[name] = func() {
			log.Info("handler called", "handler", name)
		}
	}

	translations, err := i18n.NewTranslations(i18n.DefaultLanguage, i18n.Strings)
	if err != nil {
		return nil, err
	}

	return func(locale string) (*page.Page, error) {
		doc, err := dom.Parse(bytes.NewReader(markup))
		if err != nil {
			return nil, err
		}

		pageOptions := options.Clone()
		if pageOptions.Locale == "" {
			pageOptions.Locale = locale
		}

		return page.New(doc, header.Config{
			Logger:       log.WithName("header"),
			Options:      pageOptions,
			Registry:     registry,
			Translations: translations,
		}, log.WithName("page")), nil
	}, nil
}

func readPage(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r, err := mime.Require(file, mime.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", path, err)
	}

	return io.ReadAll(r)
}
