package versionfile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/semver"
)

func TestRegistry_ReadVersion(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/proj/pyproject.toml", []byte("[project]\nversion = \"1.0.0\"\n"))
	fs.SetFile("/proj/VERSION", []byte("not-a-version\n"))
	reg := NewRegistry(fs)
	ctx := context.Background()

	v, ok, err := reg.ReadVersion(ctx, "/proj", Target{Path: "pyproject.toml", Ecosystem: EcosystemPython, Kind: KindPyproject})
	if err != nil || !ok {
		t.Fatalf("ReadVersion(pyproject.toml) = %v, %v, %v", v, ok, err)
	}
	if v.String() != "1.0.0" {
		t.Errorf("ReadVersion(pyproject.toml) = %s, want 1.0.0", v)
	}

	if _, ok, err := reg.ReadVersion(ctx, "/proj", Target{Path: "VERSION", Kind: KindPlainText}); ok || err != nil {
		t.Errorf("ReadVersion(VERSION) = %v, %v; want absent without error", ok, err)
	}

	if _, ok, err := reg.ReadVersion(ctx, "/proj", Target{Path: "missing.json", Kind: KindPackageJSON}); ok || err != nil {
		t.Errorf("ReadVersion(missing) = %v, %v; want absent without error", ok, err)
	}
}

func TestRegistry_ReadVersion_Errors(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.ReadErr = errors.New("disk on fire")
	reg := NewRegistry(fs)

	if _, _, err := reg.ReadVersion(context.Background(), "/proj", Target{Path: "VERSION", Kind: KindPlainText}); err == nil {
		t.Error("expected read failure to be reported")
	}
	if _, _, err := reg.ReadVersion(context.Background(), "/proj", Target{Path: "x", Kind: Kind("unknown")}); err == nil {
		t.Error("expected unknown kind to be reported")
	}
}

func TestRegistry_PlanDoesNotWrite(t *testing.T) {
	fs := core.NewMockFileSystem()
	original := "{\n  \"name\": \"demo\",\n  \"version\": \"1.0.0\"\n}\n"
	fs.SetFile("/proj/package.json", []byte(original))
	reg := NewRegistry(fs)

	change, err := reg.Plan(context.Background(), "/proj", Target{Path: "package.json", Kind: KindPackageJSON}, semver.MustParse("1.1.0"))
	if err != nil {
		t.Fatalf("Plan() unexpected error: %v", err)
	}
	if !change.Changed() {
		t.Fatal("Plan() reported no change")
	}

	data, _ := fs.GetFile("/proj/package.json")
	if string(data) != original {
		t.Errorf("Plan() modified the file:\n%s", data)
	}

	diff := change.Diff()
	if !strings.Contains(diff, "-  \"version\": \"1.0.0\"") || !strings.Contains(diff, "+  \"version\": \"1.1.0\"") {
		t.Errorf("Diff() missing version lines:\n%s", diff)
	}
	if !strings.Contains(diff, "a/package.json") {
		t.Errorf("Diff() missing file label:\n%s", diff)
	}
}

func TestRegistry_WriteVersion(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/proj/Cargo.toml", []byte("[package]\nname = \"demo\"\nversion = \"0.1.0\"\n"))
	reg := NewRegistry(fs)
	ctx := context.Background()
	target := Target{Path: "Cargo.toml", Ecosystem: EcosystemRust, Kind: KindCargo}

	if _, err := reg.WriteVersion(ctx, "/proj", target, semver.MustParse("0.2.0")); err != nil {
		t.Fatalf("WriteVersion() unexpected error: %v", err)
	}

	v, ok, err := reg.ReadVersion(ctx, "/proj", target)
	if err != nil || !ok || v.String() != "0.2.0" {
		t.Errorf("ReadVersion() after write = %v, %v, %v; want 0.2.0", v, ok, err)
	}

	// Writing the same version again is a no-op.
	change, err := reg.WriteVersion(ctx, "/proj", target, semver.MustParse("0.2.0"))
	if err != nil {
		t.Fatalf("second WriteVersion() unexpected error: %v", err)
	}
	if change.Changed() {
		t.Error("second WriteVersion() reported a change")
	}
}

func TestRegistry_WriteVersion_CreatesTemplates(t *testing.T) {
	fs := core.NewMockFileSystem()
	reg := NewRegistry(fs)
	ctx := context.Background()
	v := semver.MustParse("0.1.0")

	change, err := reg.WriteVersion(ctx, "/proj", Target{Path: "lib/version.rb", Kind: KindRubyConstant}, v)
	if err != nil {
		t.Fatalf("WriteVersion() unexpected error: %v", err)
	}
	if !change.Created {
		t.Error("expected Created to be true")
	}
	data, ok := fs.GetFile("/proj/lib/version.rb")
	if !ok {
		t.Fatal("lib/version.rb was not created")
	}
	if got, ok := DefaultHandlers()[KindRubyConstant].Read(data); !ok || got != v {
		t.Errorf("created file reads %v, %v; want %s", got, ok, v)
	}
	if !strings.Contains(change.Diff(), "/dev/null") {
		t.Errorf("Diff() of a new file should start from /dev/null:\n%s", change.Diff())
	}
}

func TestRegistry_Plan_ErrorKinds(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/proj/pom.xml", []byte("<project><parent><version>1.0.0</version></parent></project>"))
	fs.SetFile("/proj/package.json", []byte("{broken"))
	reg := NewRegistry(fs)
	ctx := context.Background()
	v := semver.MustParse("1.0.0")

	_, err := reg.Plan(ctx, "/proj", Target{Path: "pom.xml", Kind: KindPom}, v)
	var manual *ManualUpdateError
	if !errors.As(err, &manual) {
		t.Fatalf("Plan(pom.xml) error = %v, want *ManualUpdateError", err)
	}
	if manual.Path != "pom.xml" {
		t.Errorf("ManualUpdateError.Path = %q, want %q", manual.Path, "pom.xml")
	}

	_, err = reg.Plan(ctx, "/proj", Target{Path: "package.json", Kind: KindPackageJSON}, v)
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Plan(package.json) error = %v, want *FormatError", err)
	}
	if formatErr.Format != FormatJSON {
		t.Errorf("FormatError.Format = %s, want %s", formatErr.Format, FormatJSON)
	}

	_, err = reg.Plan(ctx, "/proj", Target{Path: "build.gradle", Kind: KindGradle}, v)
	if !errors.As(err, &manual) {
		t.Errorf("Plan(missing build.gradle) error = %v, want *ManualUpdateError", err)
	}
}

func TestRegistry_Apply_WriteError(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/proj/VERSION", []byte("1.0.0\n"))
	reg := NewRegistry(fs)
	ctx := context.Background()

	change, err := reg.Plan(ctx, "/proj", Target{Path: "VERSION", Kind: KindPlainText}, semver.MustParse("1.0.1"))
	if err != nil {
		t.Fatalf("Plan() unexpected error: %v", err)
	}
	fs.WriteErr = errors.New("read-only filesystem")
	if err := reg.Apply(ctx, "/proj", change); err == nil {
		t.Fatal("Apply() expected error, got nil")
	}
}

func TestTemplate(t *testing.T) {
	v := semver.MustParse("1.2.3")
	for _, kind := range []Kind{KindPlainText, KindPythonModule, KindRubyConstant, KindMSBuild} {
		data, ok := Template(kind, v)
		if !ok {
			t.Errorf("Template(%s) reported no template", kind)
			continue
		}
		if got, ok := DefaultHandlers()[kind].Read(data); !ok || got != v {
			t.Errorf("Template(%s) reads back as %v, %v", kind, got, ok)
		}
	}
	if _, ok := Template(KindPackageJSON, v); ok {
		t.Error("Template(package.json) should not exist")
	}
}
