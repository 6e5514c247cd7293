package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/scanpilot/internal/client/client"
	"github.com/dmitrijs2005/scanpilot/internal/client/uploads"
)

func (a *App) Upload(ctx context.Context, args []string) error {
	path := strings.Join(args, " ")
	if path == "" {
		var err error
		if path, err = a.ask("Path to document (.pdf, .docx, .doc, .txt)"); err != nil {
			return err
		}
	}
	if path == "" {
		return usageError("upload <path>")
	}

	u, err := a.fileService.UploadPath(ctx, path)
	if err != nil {
		return err
	}

	a.printf("Uploaded %s as %s (%s).\n", u.OriginalFilename, u.ID, formatSize(u.FileSize))
	a.printf("Type 'process %s' to analyse it.\n", u.ID)
	return nil
}

func (a *App) Files(ctx context.Context) error {
	list, err := a.fileService.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No uploads yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tSIZE\tSTATUS\tUPLOADED")
	for _, u := range list {
		status := string(u.Status)
		if u.ErrorMessage != "" {
			status += " (" + u.ErrorMessage + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.OriginalFilename, formatSize(u.FileSize), status, formatTime(u.CreatedAt))
	}
	return tw.Flush()
}

// Process starts analysis of an upload and follows it until it settles.
func (a *App) Process(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("process <id> [model]")
	}
	id, model := args[0], ""
	if len(args) > 1 {
		model = args[1]
	}

	a.forgetStatus(id)
	task, err := a.fileService.Process(ctx, id, model)
	if err != nil {
		return err
	}
	a.printf("Processing %s...\n", id)

	o, err := task.Wait(ctx)
	if err != nil {
		a.fileService.Cancel(id)
		return err
	}
	return a.reportOutcome(id, o)
}

func (a *App) reportOutcome(id string, o uploads.Outcome) error {
	switch o.State {
	case uploads.StateCompleted:
		a.printf("%s: analysis completed. Type 'results' to see it.\n", id)
	case uploads.StateFailed:
		msg := "unknown error"
		if o.Upload != nil && o.Upload.ErrorMessage != "" {
			msg = o.Upload.ErrorMessage
		}
		a.printf("%s: analysis failed: %s. Type 'process %s' to retry.\n", id, msg, id)
	case uploads.StateTimedOut:
		a.printf("%s: still processing after %s. Check again later with 'files'.\n", id, a.config.PollTimeout)
	case uploads.StateCancelled:
		a.printf("%s: stopped following.\n", id)
	default:
		return o.Err
	}
	return nil
}

// Retry re-processes every failed upload at once.
func (a *App) Retry(ctx context.Context) error {
	results, err := a.fileService.RetryFailed(ctx, "")
	if err != nil {
		return err
	}
	if len(results) == 0 {
		a.println("No failed uploads.")
		return nil
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			a.printf("%s: could not restart: %v\n", r.UploadID, r.Err)
			errs = append(errs, r.Err)
			continue
		}
		if err := a.reportOutcome(r.UploadID, r.Outcome); err != nil {
			errs = append(errs, err)
		}
	}

	// a lost session surfaces once, through report
	for _, e := range errs {
		if isSessionError(e) {
			return e
		}
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("delete <id>")
	}
	id := args[0]

	if !Confirm(a.reader, fmt.Sprintf("Delete upload %s?", id), a.out) {
		a.println("Cancelled.")
		return nil
	}

	if err := a.fileService.Delete(ctx, id); err != nil {
		return err
	}
	a.forgetStatus(id)
	a.printf("Deleted %s.\n", id)
	return nil
}

func isSessionError(err error) bool {
	return errors.Is(err, client.ErrUnauthenticated) || errors.Is(err, client.ErrUnauthorized)
}
