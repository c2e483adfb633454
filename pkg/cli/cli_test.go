package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tidu/pkg/config"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := &config.Config{
		DataDir: t.TempDir(),
		Storage: config.StorageJSON,
	}
	app, err := NewApp(cfg, out)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app, out
}

func run(t *testing.T, app *App, args ...string) error {
	t.Helper()
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func mustRun(t *testing.T, app *App, args ...string) {
	t.Helper()
	if err := run(t, app, args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func TestAddAndList(t *testing.T) {
	app, out := newTestApp(t)

	mustRun(t, app, "add", "Buy", "milk")
	mustRun(t, app, "add", "Call", "dentist", "--priority", "high")

	if !strings.Contains(out.String(), "Added") {
		t.Errorf("Expected add confirmation, got:\n%s", out.String())
	}

	out.Reset()
	mustRun(t, app, "list")
	listing := out.String()
	if !strings.Contains(listing, "Buy milk") || !strings.Contains(listing, "Call dentist") {
		t.Errorf("Expected both tasks listed, got:\n%s", listing)
	}
	if !strings.Contains(listing, "(high)") {
		t.Errorf("Expected priority marker, got:\n%s", listing)
	}
}

func TestAdd_EmptyTextFails(t *testing.T) {
	app, _ := newTestApp(t)
	if err := run(t, app, "add", "   "); err == nil {
		t.Error("Expected error for blank text")
	}
}

func TestDoneAndStats(t *testing.T) {
	app, out := newTestApp(t)
	mustRun(t, app, "add", "One")
	mustRun(t, app, "add", "Two")
	id := app.manager.GetAllTasks()[0].ID

	out.Reset()
	mustRun(t, app, "done", id, "missing-id")
	if !strings.Contains(out.String(), "Completed 1 task(s), skipped 1") {
		t.Errorf("Expected completion summary, got:\n%s", out.String())
	}

	out.Reset()
	mustRun(t, app, "stats")
	statsOut := out.String()
	if !strings.Contains(statsOut, "Total:     2") || !strings.Contains(statsOut, "Completed: 1 (50%)") {
		t.Errorf("Expected stats output, got:\n%s", statsOut)
	}
}

func TestListFilterCompleted(t *testing.T) {
	app, out := newTestApp(t)
	mustRun(t, app, "add", "Open")
	mustRun(t, app, "add", "Closed")
	id := app.manager.GetAllTasks()[0].ID
	mustRun(t, app, "done", id)

	out.Reset()
	mustRun(t, app, "list", "--filter", "completed")
	if strings.Contains(out.String(), "Open") {
		t.Errorf("Expected only completed tasks, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Closed") {
		t.Errorf("Expected completed task listed, got:\n%s", out.String())
	}
}

func TestSearch(t *testing.T) {
	app, out := newTestApp(t)
	mustRun(t, app, "add", "Water plants", "--tag", "garden")
	mustRun(t, app, "add", "Call dentist")

	out.Reset()
	mustRun(t, app, "search", "garden")
	if !strings.Contains(out.String(), "Water plants") || strings.Contains(out.String(), "Call dentist") {
		t.Errorf("Expected only the tagged task, got:\n%s", out.String())
	}
}

func TestUpdateAndGet(t *testing.T) {
	app, out := newTestApp(t)
	mustRun(t, app, "add", "Original")
	id := app.manager.GetAllTasks()[0].ID

	mustRun(t, app, "update", id, "--text", "Rewritten", "--priority", "low", "--desc", "note")

	out.Reset()
	mustRun(t, app, "get", id)
	detail := out.String()
	for _, want := range []string{"Rewritten", "low", "note"} {
		if !strings.Contains(detail, want) {
			t.Errorf("Expected detail to contain %q, got:\n%s", want, detail)
		}
	}
}

func TestGet_UnknownID(t *testing.T) {
	app, _ := newTestApp(t)
	if err := run(t, app, "get", "nope"); err == nil {
		t.Error("Expected error for unknown id")
	}
}

func TestRemove(t *testing.T) {
	app, _ := newTestApp(t)
	mustRun(t, app, "add", "Doomed")
	id := app.manager.GetAllTasks()[0].ID

	mustRun(t, app, "rm", id)
	if len(app.manager.GetAllTasks()) != 0 {
		t.Error("Expected empty collection")
	}

	if err := run(t, app, "rm", "missing"); err == nil {
		t.Error("Expected error removing unknown id")
	}
}

func TestClear(t *testing.T) {
	app, out := newTestApp(t)
	mustRun(t, app, "add", "Done task")
	id := app.manager.GetAllTasks()[0].ID
	mustRun(t, app, "done", id)

	out.Reset()
	mustRun(t, app, "clear")
	if !strings.Contains(out.String(), "Cleared 1 completed task(s)") {
		t.Errorf("Expected clear confirmation, got:\n%s", out.String())
	}
}

func TestReset_RequiresForce(t *testing.T) {
	app, _ := newTestApp(t)
	mustRun(t, app, "add", "Precious")

	if err := run(t, app, "reset"); err == nil {
		t.Error("Expected reset to refuse without --force")
	}
	if len(app.manager.GetAllTasks()) != 1 {
		t.Error("Expected collection untouched")
	}

	mustRun(t, app, "reset", "--force")
	if len(app.manager.GetAllTasks()) != 0 {
		t.Error("Expected collection emptied")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)
	mustRun(t, app, "add", "Keep me", "--category", "work")
	path := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, app, "export", path)

	other, otherOut := newTestApp(t)
	mustRun(t, other, "import", path)
	if !strings.Contains(otherOut.String(), "Imported 1 task(s) (merge)") {
		t.Errorf("Expected import confirmation, got:\n%s", otherOut.String())
	}
	imported := other.manager.GetAllTasks()
	if len(imported) != 1 || imported[0].Text != "Keep me" || imported[0].Category != "work" {
		t.Errorf("Expected imported task intact, got %+v", imported)
	}
}

func TestImportEmptyEnvelope(t *testing.T) {
	app, _ := newTestApp(t)
	path := filepath.Join(t.TempDir(), "empty.json")
	mustRun(t, app, "export", path)

	other, _ := newTestApp(t)
	if err := run(t, other, "import", path); err != nil {
		t.Fatalf("importing a valid empty envelope should succeed, got: %v", err)
	}
	if len(other.manager.GetAllTasks()) != 0 {
		t.Error("Expected collection to stay empty")
	}
}

func TestImportOrgFile(t *testing.T) {
	app, _ := newTestApp(t)
	orgPath := filepath.Join(t.TempDir(), "inbox.org")
	content := "* TODO [#A] Call dentist :health:\n* DONE Water plants\n"
	if err := os.WriteFile(orgPath, []byte(content), 0600); err != nil {
		t.Fatalf("could not write org file: %v", err)
	}

	mustRun(t, app, "import", orgPath)
	tasks := app.manager.GetAllTasks()
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 imported tasks, got %d", len(tasks))
	}
}
