package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/filex"
)

// Upload sends local files into a new bucket. "-p <password>" protects it.
func (a *App) Upload(ctx context.Context, args []string) error {
	password, paths := splitFlag(args, "-p")
	if len(paths) == 0 {
		return usage("upload [-p password] <file>...")
	}

	files := make([]models.UploadFile, 0, len(paths))
	for _, p := range paths {
		f, err := filex.UploadFromPath(p)
		if err != nil {
			return a.fail(ctx, "read file", err)
		}
		files = append(files, f)
	}

	res, err := a.uploads.Upload(ctx, files, password)
	if err != nil {
		return a.fail(ctx, "upload", err)
	}

	printlnFn(fmt.Sprintf("Uploaded %d file(s), %d bytes", len(files), res.TotalSize))
	printlnFn("Bucket:", res.StorageID)
	printlnFn("Share:", strings.TrimRight(a.config.ServerURL, "/")+res.URL)
	return nil
}
