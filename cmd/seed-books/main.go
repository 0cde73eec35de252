// Command seed-books uploads the bundled starter catalog into the
// configured document store. The local emulation seeds itself on first use;
// this command exists for pointing a fresh hosted backend at the same
// dataset, and optionally pushes cover images to object storage.
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/bookbuddy/go-services/internal/config"
	"github.com/bookbuddy/go-services/internal/covers"
	"github.com/bookbuddy/go-services/internal/docstore"
	"github.com/bookbuddy/go-services/internal/models"
	"github.com/bookbuddy/go-services/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := docstore.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("open document store: %v", err)
	}

	var coverStore *covers.Storage
	if c := covers.LoadConfig(); c.Endpoint != "" {
		coverStore, err = covers.NewStorage(c)
		if err != nil {
			logger.Warnf("cover storage unavailable, skipping cover uploads: %v", err)
			coverStore = nil
		}
	}

	books := docstore.SeedBooks()
	if len(books) == 0 {
		logger.Infof("no books found in the seed catalog")
		return
	}
	logger.Infof("found %d books to upload", len(books))

	// pace the writes; hosted backends meter them
	limiter := rate.NewLimiter(rate.Limit(5), 1)

	for _, book := range books {
		if err := limiter.Wait(ctx); err != nil {
			logger.Fatalf("rate limiter: %v", err)
		}

		seedID, _ := book[docstore.FieldID].(string)
		doc := docstore.Fields{}
		for k, v := range book {
			// the store assigns fresh ids and timestamps
			if k == docstore.FieldID || k == docstore.FieldCreatedAt {
				continue
			}
			doc[k] = v
		}
		if _, ok := doc["status"]; !ok {
			doc["status"] = models.BookAvailable
		}
		doc["addedAt"] = time.Now().UTC().Format(time.RFC3339)

		id, err := store.Add(ctx, docstore.Collection(docstore.CollectionBooks), doc)
		if err != nil {
			logger.Errorf("uploading %q: %v", doc["title"], err)
			continue
		}
		logger.Infof("book %q uploaded with id %s", doc["title"], id)

		if coverStore != nil {
			uploadCover(ctx, coverStore, store, seedID, id)
		}
	}
	logger.Infof("seed upload finished")
}

// uploadCover pushes assets/covers/<seedID>.jpg to object storage, when the
// file exists, and points the stored book at the presigned URL.
func uploadCover(ctx context.Context, cs *covers.Storage, store docstore.Store, seedID, bookID string) {
	path := filepath.Join("assets", "covers", seedID+".jpg")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		logger.Warnf("open cover %s: %v", path, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Warnf("stat cover %s: %v", path, err)
		return
	}
	key, err := cs.Upload(ctx, bookID, f, info.Size(), "image/jpeg")
	if err != nil {
		logger.Warnf("upload cover for book %s: %v", bookID, err)
		return
	}
	url, err := cs.URL(ctx, key, 7*24*time.Hour)
	if err != nil {
		logger.Warnf("presign cover for book %s: %v", bookID, err)
		return
	}
	if err := store.Update(ctx, docstore.Doc(docstore.CollectionBooks, bookID), docstore.Fields{"coverUrl": url}); err != nil {
		logger.Warnf("store cover url for book %s: %v", bookID, err)
	}
}
