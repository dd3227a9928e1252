package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/behnamazizi/localnet-bookmarks/internal/build"
	"github.com/behnamazizi/localnet-bookmarks/internal/config"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the page locally and rebuilds it on changes",
	Long: `The serve command performs an initial build, then serves the output
directory over HTTP. The site list, icons directory, intro and template are
watched and the page is rebuilt whenever one of them changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, appConfig, serverPort)
	},
}

func serve(ctx context.Context, cfg config.Config, port int) error {
	builder := build.NewBuilder(cfg)

	log.Println("Performing initial build...")
	if _, err := builder.Build(); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	filter := newWatchFilter(cfg)
	for _, dir := range filter.dirs() {
		if err := watcher.Add(dir); err != nil {
			log.Printf("Failed to watch %s: %v", dir, err)
		}
	}

	r := &rebuilder{builder: builder}
	go r.loop(ctx, watcher, filter)

	outDir := filepath.Dir(cfg.Output)
	page := "/" + filepath.Base(cfg.Output)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           noCache(outDir, page),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Serving %s on http://localhost%s%s", outDir, srv.Addr, page)
		log.Println("Press Ctrl+C to stop the server.")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.stop()
		return srv.Shutdown(shutdownCtx)
	}
}

// noCache serves dir without directory listings and with caching disabled.
// "/" serves the page itself.
func noCache(dir, page string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		switch {
		case r.URL.Path == "/" || r.URL.Path == page:
			servePage(w, r, filepath.Join(dir, filepath.FromSlash(page)))
		case strings.HasSuffix(r.URL.Path, "/"):
			http.NotFound(w, r)
		default:
			fs.ServeHTTP(w, r)
		}
	})
}

// servePage serves path directly; http.FileServer would redirect
// "/index.html" back to "/".
func servePage(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// watchFilter decides which file events should trigger a rebuild. Files are
// watched through their parent directory so that editors that replace a file
// on save are still noticed. The icons dir is watched directly once it exists.
type watchFilter struct {
	files  map[string]bool
	trees  []string
	output string
}

func newWatchFilter(cfg config.Config) *watchFilter {
	f := &watchFilter{files: map[string]bool{}, output: filepath.Clean(cfg.Output)}
	icons := ""
	if cfg.IconsDir != "" {
		icons = filepath.Clean(cfg.IconsDir)
		f.trees = append(f.trees, icons)
	}
	for _, p := range cfg.WatchPaths() {
		p = filepath.Clean(p)
		if p == icons {
			continue
		}
		f.files[p] = true
	}
	return f
}

// dirs lists the directories to add to the watcher. A tree that does not
// exist yet is covered through its parent until it is created.
func (f *watchFilter) dirs() []string {
	seen := map[string]bool{}
	var dirs []string
	add := func(d string) bool {
		if seen[d] {
			return true
		}
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			return false
		}
		seen[d] = true
		dirs = append(dirs, d)
		return true
	}
	for _, t := range f.trees {
		if !add(t) {
			add(filepath.Dir(t))
		}
	}
	for p := range f.files {
		add(filepath.Dir(p))
	}
	return dirs
}

func (f *watchFilter) isTree(name string) bool {
	name = filepath.Clean(name)
	for _, t := range f.trees {
		if name == t {
			return true
		}
	}
	return false
}

func (f *watchFilter) relevant(name string) bool {
	name = filepath.Clean(name)
	if name == f.output {
		return false
	}
	if f.files[name] || f.isTree(name) {
		return true
	}
	for _, t := range f.trees {
		if strings.HasPrefix(name, t+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// watchCreated starts watching name when it is a watched tree that has just
// been created as a directory.
func (f *watchFilter) watchCreated(watcher *fsnotify.Watcher, name string) {
	if !f.isTree(name) {
		return
	}
	if info, err := os.Stat(name); err != nil || !info.IsDir() {
		return
	}
	log.Printf("New directory created: %s. Adding to watcher.", name)
	if err := watcher.Add(name); err != nil {
		log.Printf("Error adding new directory %s to watcher: %v", name, err)
	}
}

// rebuilder debounces change events and runs one build at a time.
type rebuilder struct {
	builder *build.Builder

	mu    sync.Mutex
	timer *time.Timer
}

func (r *rebuilder) loop(ctx context.Context, watcher *fsnotify.Watcher, filter *watchFilter) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !filter.relevant(event.Name) {
				continue
			}
			log.Printf("Change detected: %s (%s)", event.Name, event.Op.String())
			if event.Has(fsnotify.Create) {
				filter.watchCreated(watcher, event.Name)
			}
			r.schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (r *rebuilder) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(debounceDuration, r.rebuild)
}

func (r *rebuilder) rebuild() {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.Println("Rebuilding due to changes...")
	if _, err := r.builder.Build(); err != nil {
		log.Printf("Error during rebuild: %v", err)
		return
	}
	log.Println("Rebuilt successfully.")
}

func (r *rebuilder) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the page on")
	rootCmd.AddCommand(serveCmd)
}
