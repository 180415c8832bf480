// Command client submits a rated spot with attached photos to a spotlist
// server from the command line. Photos are normalized locally, uploaded
// directly to object storage and registered with the backend; any partial
// failure is rolled back before the command exits.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dkotelnikov/spotlist/internal/client/api"
	"github.com/dkotelnikov/spotlist/internal/client/batch"
	"github.com/dkotelnikov/spotlist/internal/client/config"
	"github.com/dkotelnikov/spotlist/internal/client/drafts"
	"github.com/dkotelnikov/spotlist/internal/client/submit"
	"github.com/dkotelnikov/spotlist/internal/client/upload"
	"github.com/dkotelnikov/spotlist/internal/filex"
	"github.com/dkotelnikov/spotlist/internal/flagx"
	"github.com/dkotelnikov/spotlist/internal/logging"
	"github.com/dkotelnikov/spotlist/internal/storage"
)

type cliArgs struct {
	listID      string
	spotID      string
	name        string
	category    string
	address     string
	description string
	comment     string
	score       float64
	criteria    string
	photos      string
	cover       int
}

func parseArgs() *cliArgs {
	known := []string{"-list", "-spot", "-name", "-category", "-address",
		"-description", "-comment", "-score", "-criteria", "-photos", "-cover"}
	args := flagx.FilterArgs(os.Args[1:], known)

	a := &cliArgs{}
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	fs.StringVar(&a.listID, "list", "", "list id (required)")
	fs.StringVar(&a.spotID, "spot", "", "spot id; empty creates a new spot")
	fs.StringVar(&a.name, "name", "", "spot name (required)")
	fs.StringVar(&a.category, "category", "", "spot category (required)")
	fs.StringVar(&a.address, "address", "", "street address")
	fs.StringVar(&a.description, "description", "", "description")
	fs.StringVar(&a.comment, "comment", "", "private comment")
	fs.Float64Var(&a.score, "score", 0, "overall score 0-5")
	fs.StringVar(&a.criteria, "criteria", "", "criterion scores, e.g. taste=5,vibe=4")
	fs.StringVar(&a.photos, "photos", "", "comma-separated photo file paths")
	fs.IntVar(&a.cover, "cover", 0, "index of the cover photo within -photos")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	return a
}

func parseCriteria(s string) (map[string]float64, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		name, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed criterion %q, want name=score", pair)
		}
		score, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("criterion %q: %w", name, err)
		}
		out[strings.TrimSpace(name)] = score
	}
	return out, nil
}

func mediaTypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".heic", ".heif":
		return "image/heic"
	default:
		return mime.TypeByExtension(filepath.Ext(path))
	}
}

func fillBatch(b *batch.Batch, photosArg string, cover int) error {
	if photosArg == "" {
		return nil
	}
	paths := strings.Split(photosArg, ",")
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		id, err := b.Add(filepath.Base(p), mediaTypeOf(p), data, nil)
		if err != nil {
			return fmt.Errorf("adding %s: %w", p, err)
		}
		ids = append(ids, id)
	}
	if cover < 0 || cover >= len(ids) {
		return fmt.Errorf("cover index %d out of range", cover)
	}
	return b.SetCover(ids[cover])
}

// printEvents renders upload transitions until the batch is closed.
func printEvents(b *batch.Batch, done chan<- struct{}) {
	defer close(done)
	for ev := range b.Events() {
		switch ev.Kind {
		case batch.EventProgress:
			fmt.Printf("  %s: %d%%\n", ev.EntryID[:8], ev.Progress)
		case batch.EventStatus:
			line := fmt.Sprintf("  %s: %s", ev.EntryID[:8], ev.Status)
			if ev.Err != "" {
				line += " (" + ev.Err + ")"
			}
			fmt.Println(line)
		}
	}
}

func openDraftStore(ctx context.Context) (drafts.Store, func(), error) {
	dir, err := filex.EnsureDataDir("spotlist")
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "drafts.db"))
	if err != nil {
		return nil, nil, err
	}
	store := drafts.NewSQLiteStore(db)
	if err := store.Init(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { _ = db.Close() }, nil
}

func run(ctx context.Context) error {
	args := parseArgs()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	criteria, err := parseCriteria(args.criteria)
	if err != nil {
		return err
	}

	store, err := storage.NewS3Store(ctx, cfg.S3)
	if err != nil {
		return fmt.Errorf("s3 init error: %w", err)
	}

	client := api.NewHTTPClient(cfg.ServerBaseURL)
	coord := upload.NewCoordinator(upload.NewUploader(store, client, logger), logger)

	draftStore, closeDrafts, err := openDraftStore(ctx)
	if err != nil {
		return fmt.Errorf("draft store init error: %w", err)
	}
	defer closeDrafts()

	form := submit.Form{
		ListID:      args.listID,
		SpotID:      args.spotID,
		Name:        args.name,
		Category:    args.category,
		Score:       args.score,
		Criteria:    criteria,
		Address:     args.address,
		Description: args.description,
		Comment:     args.comment,
	}

	// Snapshot the form before going remote so a failed run can be resumed.
	draftKey := drafts.Key(form.ListID, form.SpotID)
	draft := &drafts.Draft{
		ListID: form.ListID, SpotID: form.SpotID, Name: form.Name,
		Category: form.Category, Address: form.Address,
		Description: form.Description, Comment: form.Comment,
		Score: form.Score, Criteria: form.Criteria, SavedAt: time.Now(),
	}
	if err := draftStore.Save(ctx, draftKey, draft); err != nil {
		logger.Warn(ctx, "saving draft failed", "error", err)
	}

	b := batch.New()
	if err := fillBatch(b, args.photos, args.cover); err != nil {
		b.Close()
		return err
	}

	done := make(chan struct{})
	go printEvents(b, done)

	orch := submit.NewOrchestrator(client, coord, draftStore, logger)
	result, err := orch.Submit(ctx, form, b)

	b.Close()
	<-done

	if err != nil {
		return fmt.Errorf("submission failed (%s): %w", result.State, err)
	}

	fmt.Printf("spot %s submitted with %d photos\n", result.SpotID, len(result.Photos))
	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
