package versionfile

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/indaco/relkit/internal/semver"
	"pgregory.net/rapid"
)

type fixture struct {
	name string
	kind Kind
	data string
	want string // "" means no version is declared
}

var fixtures = []fixture{
	{"pyproject project table", KindPyproject, "[build-system]\nrequires = [\"hatchling\"]\n\n[project]\nname = \"demo\"\nversion = \"1.0.0\"  # keep\ndescription = \"x\"\n", "1.0.0"},
	{"pyproject poetry", KindPyproject, "[tool.poetry]\nname = \"demo\"\nversion = '0.3.0'\n", "0.3.0"},
	{"pyproject without version", KindPyproject, "[build-system]\nrequires = [\"setuptools\"]\n\n[project]\nname = \"demo\"\n", ""},
	{"pyproject multi-line description", KindPyproject, "[project]\nname = \"demo\"\ndescription = \"\"\"\nversion = \"9.9.9\"\n[tool.fake]\n\"\"\"\nversion = \"1.0.0\"\n", "1.0.0"},
	{"pyproject inline table", KindPyproject, "project = { name = \"demo\", version = \"1.0.0\" }\n", "1.0.0"},
	{"setup.py keyword", KindSetupPy, "from setuptools import setup\n\nsetup(\n    name=\"demo\",\n    version=\"1.2.0\",\n    python_requires=\">=3.9\",\n)\n", "1.2.0"},
	{"setup.py dunder", KindSetupPy, "__version__ = '2.0.0'\nsetup(version=__version__)\n", "2.0.0"},
	{"setup.py missing", KindSetupPy, "from setuptools import setup\nsetup(name=\"demo\")\n", ""},
	{"setup.cfg", KindSetupCfg, "[metadata]\nname = demo\nversion = 1.2.0\n\n[options]\npackages = find:\n", "1.2.0"},
	{"setup.cfg missing section", KindSetupCfg, "[options]\npackages = find:\n", ""},
	{"version module", KindPythonModule, "\"\"\"Version.\"\"\"\n__version__ = \"0.1.0\"\n", "0.1.0"},
	{"version module annotated", KindPythonModule, "__version__: str = \"0.1.0\"\n", "0.1.0"},
	{"version module chained", KindPythonModule, "__version__ = version = '1.2.3'\n__version_tuple__ = version_tuple = (1, 2, 3)\n", "1.2.3"},
	{"version module empty", KindPythonModule, "", ""},
	{"plain text", KindPlainText, "1.0.0\n", "1.0.0"},
	{"plain text garbage", KindPlainText, "not a version\n", ""},
	{"package.json", KindPackageJSON, "{\n  \"name\": \"demo\",\n  \"version\": \"1.0.0\",\n  \"scripts\": {\n    \"test\": \"jest\"\n  }\n}\n", "1.0.0"},
	{"package.json without version", KindPackageJSON, "{\n  \"name\": \"demo\"\n}\n", ""},
	{"composer.json", KindComposer, "{\"name\": \"acme/demo\", \"version\": \"3.1.4\"}", "3.1.4"},
	{"go.mod comment", KindGoMod, "module example.com/demo\n// version: 0.4.0\n\ngo 1.22\n", "0.4.0"},
	{"go.mod without comment", KindGoMod, "module example.com/demo\n\ngo 1.22\n", ""},
	{"Cargo.toml", KindCargo, "[package]\nname = \"demo\"\nversion = \"0.1.0\"\nedition = \"2021\"\n\n[dependencies]\nserde = { version = \"1.0\" }\n", "0.1.0"},
	{"Cargo workspace", KindCargo, "[workspace]\nmembers = [\"a\"]\n\n[workspace.package]\nversion = \"2.3.0\"\n", "2.3.0"},
	{"pom.xml", KindPom, "<project>\n  <parent>\n    <groupId>org.example</groupId>\n    <version>9.9.9</version>\n  </parent>\n  <artifactId>demo</artifactId>\n  <version>1.0.0</version>\n  <dependencies>\n    <dependency><version>5.0.0</version></dependency>\n  </dependencies>\n</project>\n", "1.0.0"},
	{"build.gradle", KindGradle, "plugins { id 'java' }\n\ngroup = 'org.example'\nversion = '1.0.0'\n", "1.0.0"},
	{"build.gradle.kts", KindGradle, "group = \"org.example\"\nversion = \"1.1.0\"\n", "1.1.0"},
	{"pom.xml commented version", KindPom, "<project>\n  <!-- <version>0.0.1</version> -->\n  <artifactId>demo</artifactId>\n  <version>1.0.0</version>\n</project>\n", "1.0.0"},
	{"csproj commented version", KindMSBuild, "<Project Sdk=\"Microsoft.NET.Sdk\">\n  <PropertyGroup>\n    <!--\n    <Version>0.0.1</Version>\n    -->\n    <Version>1.0.0</Version>\n  </PropertyGroup>\n</Project>\n", "1.0.0"},
	{"csproj version prefix", KindMSBuild, "<Project Sdk=\"Microsoft.NET.Sdk\">\n  <PropertyGroup>\n    <VersionPrefix>1.0.0</VersionPrefix>\n  </PropertyGroup>\n</Project>\n", "1.0.0"},
	{"gemspec", KindGemspec, "Gem::Specification.new do |spec|\n  spec.name = \"demo\"\n  spec.version = \"1.0.0\"\nend\n", "1.0.0"},
	{"ruby constant", KindRubyConstant, "module Demo\n  VERSION = \"1.0.0\".freeze\nend\n", "1.0.0"},
	{"ruby constant missing", KindRubyConstant, "module Demo\nend\n", ""},
}

// fataler is satisfied by both *testing.T and *rapid.T.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func handlerFor(t fataler, kind Kind) Handler {
	t.Helper()
	h, ok := DefaultHandlers()[kind]
	if !ok {
		t.Fatalf("no handler for %s", kind)
	}
	return h
}

func TestHandlers_Read(t *testing.T) {
	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			v, ok := handlerFor(t, fx.kind).Read([]byte(fx.data))
			if fx.want == "" {
				if ok {
					t.Fatalf("Read() = %s, want absent", v)
				}
				return
			}
			if !ok {
				t.Fatalf("Read() reported absent, want %s", fx.want)
			}
			if v.String() != fx.want {
				t.Errorf("Read() = %s, want %s", v, fx.want)
			}
		})
	}
}

func TestHandlers_WritePreservesContent(t *testing.T) {
	v := semver.MustParse("1.0.1")
	for _, fx := range fixtures {
		if fx.want == "" || fx.kind == KindPlainText {
			continue
		}
		t.Run(fx.name, func(t *testing.T) {
			out, err := handlerFor(t, fx.kind).Write([]byte(fx.data), v)
			if err != nil {
				t.Fatalf("Write() unexpected error: %v", err)
			}
			want := strings.Replace(fx.data, fx.want, "1.0.1", 1)
			if fx.kind == KindComposer {
				want += "\n"
			}
			if string(out) != want {
				t.Errorf("Write() =\n%s\nwant\n%s", out, want)
			}
		})
	}
}

func TestHandlers_WriteFallbacks(t *testing.T) {
	v := semver.MustParse("0.2.0")
	tests := []struct {
		name string
		kind Kind
		data string
		want string
	}{
		{"pyproject inserts into existing table", KindPyproject, "[project]\nname = \"demo\"\n",
			"[project]\nversion = \"0.2.0\"\nname = \"demo\"\n"},
		{"pyproject inserts after commented header", KindPyproject, "[build-system]\nrequires = []\n\n[project] # metadata\r\nname = \"demo\"\r\n",
			"[build-system]\nrequires = []\n\n[project] # metadata\r\nversion = \"0.2.0\"\r\nname = \"demo\"\r\n"},
		{"pyproject header on last line", KindPyproject, "[project]",
			"[project]\nversion = \"0.2.0\"\n"},
		{"pyproject prefers poetry table when present", KindPyproject, "[tool.poetry]\nname = \"demo\"\n",
			"[tool.poetry]\nversion = \"0.2.0\"\nname = \"demo\"\n"},
		{"setup.py appends dunder", KindSetupPy, "setup(name=\"demo\")",
			"setup(name=\"demo\")\n__version__ = \"0.2.0\"\n"},
		{"setup.cfg appends metadata", KindSetupCfg, "[options]\npackages = find:\n",
			"[options]\npackages = find:\n\n[metadata]\nversion = 0.2.0\n"},
		{"package.json adds key", KindPackageJSON, "{\"name\":\"demo\"}",
			"{\"name\":\"demo\",\"version\":\"0.2.0\"}\n"},
		{"go.mod adds comment", KindGoMod, "module example.com/demo\n\ngo 1.22\n",
			"module example.com/demo\n// version: 0.2.0\n\ngo 1.22\n"},
		{"ruby appends constant", KindRubyConstant, "module Demo\nend\n",
			"module Demo\nend\nVERSION = \"0.2.0\"\n"},
		{"plain text replaces file", KindPlainText, "garbage", "0.2.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := handlerFor(t, tt.kind).Write([]byte(tt.data), v)
			if err != nil {
				t.Fatalf("Write() unexpected error: %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Write() = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestHandlers_WriteRefusals(t *testing.T) {
	v := semver.MustParse("1.0.0")
	tests := []struct {
		name   string
		kind   Kind
		data   string
		manual bool
	}{
		{"pom without project version", KindPom, "<project>\n  <parent><version>1.0.0</version></parent>\n</project>\n", true},
		{"pom with property reference", KindPom, "<project>\n  <version>${revision}</version>\n</project>\n", true},
		{"gradle without version", KindGradle, "plugins { id 'java' }\n", true},
		{"csproj without version", KindMSBuild, "<Project Sdk=\"Microsoft.NET.Sdk\"></Project>\n", true},
		{"gemspec with constant", KindGemspec, "spec.version = Demo::VERSION\n", true},
		{"pyproject without project table", KindPyproject, "[build-system]\nrequires = [\"setuptools\"]\n\n[tool.black]\nline-length = 100\n", true},
		{"pyproject empty", KindPyproject, "", true},
		{"pyproject multi-line version", KindPyproject, "[project]\nname = \"demo\"\nversion = \"\"\"1.0.0\"\"\"\n", true},
		{"cargo without package table", KindCargo, "[dependencies]\nserde = \"1\"\n", true},
		{"pyproject dynamic version", KindPyproject, "[project]\nname = \"demo\"\ndynamic = [\"version\"]\n", true},
		{"cargo workspace inherited", KindCargo, "[package]\nname = \"demo\"\nversion.workspace = true\n", true},
		{"setup.cfg attr", KindSetupCfg, "[metadata]\nversion = attr: demo.__version__\n", true},
		{"package.json numeric version", KindPackageJSON, "{\"version\": 1}", true},
		{"malformed JSON", KindPackageJSON, "{\"name\": ", false},
		{"JSON array", KindComposer, "[1, 2]", false},
		{"malformed TOML", KindCargo, "[package\nname = ", false},
		{"not XML", KindPom, "plain text", false},
		{"go.mod without module", KindGoMod, "go 1.22\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handlerFor(t, tt.kind).Write([]byte(tt.data), v)
			if err == nil {
				t.Fatal("Write() expected error, got nil")
			}
			if got := errors.Is(err, errNoDeclaration); got != tt.manual {
				t.Errorf("errors.Is(err, errNoDeclaration) = %v, want %v (err: %v)", got, tt.manual, err)
			}
		})
	}
}

func TestHasVersionComment(t *testing.T) {
	if !HasVersionComment([]byte("module x\n// version: 1.0.0\n")) {
		t.Error("HasVersionComment() = false, want true")
	}
	if HasVersionComment([]byte("module x\n// some other comment\n")) {
		t.Error("HasVersionComment() = true, want false")
	}
}

func genVersion() *rapid.Generator[semver.SemVersion] {
	ident := rapid.OneOf(
		rapid.StringMatching(`[a-z][a-z0-9]{0,4}`),
		rapid.Map(rapid.IntRange(0, 99), strconv.Itoa),
	)
	return rapid.Custom(func(t *rapid.T) semver.SemVersion {
		v := semver.SemVersion{
			Major: rapid.IntRange(0, 99).Draw(t, "major"),
			Minor: rapid.IntRange(0, 99).Draw(t, "minor"),
			Patch: rapid.IntRange(0, 99).Draw(t, "patch"),
		}
		v.PreRelease = strings.Join(rapid.SliceOfN(ident, 0, 2).Draw(t, "pre"), ".")
		if rapid.Bool().Draw(t, "build") {
			v.Build = rapid.StringMatching(`[a-z0-9]{1,5}`).Draw(t, "meta")
		}
		return v
	})
}

func TestProperty_WriteReadRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fx := rapid.SampledFrom(fixtures).Draw(t, "fixture")
		v := genVersion().Draw(t, "v")
		h := handlerFor(t, fx.kind)

		out, err := h.Write([]byte(fx.data), v)
		if err != nil {
			t.Fatalf("Write(%s): %v", fx.name, err)
		}
		got, ok := h.Read(out)
		if !ok {
			t.Fatalf("Read(%s) after write reported absent:\n%s", fx.name, out)
		}
		if got != v {
			t.Fatalf("Read(%s) = %s, want %s", fx.name, got, v)
		}
	})
}

func TestProperty_WriteIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fx := rapid.SampledFrom(fixtures).Draw(t, "fixture")
		v := genVersion().Draw(t, "v")
		h := handlerFor(t, fx.kind)

		once, err := h.Write([]byte(fx.data), v)
		if err != nil {
			t.Fatalf("Write(%s): %v", fx.name, err)
		}
		twice, err := h.Write(once, v)
		if err != nil {
			t.Fatalf("second Write(%s): %v", fx.name, err)
		}
		if string(once) != string(twice) {
			t.Fatalf("Write(%s) not idempotent:\n%q\n%q", fx.name, once, twice)
		}
	})
}
