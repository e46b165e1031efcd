package detector

import (
	"regexp"
	"slices"
	"strings"

	"github.com/indaco/relkit/internal/versionfile"
	"github.com/tidwall/gjson"
)

// ecosystemRule is one row of the detection table. Every function is a pure
// predicate over the scanned tree.
type ecosystemRule struct {
	eco versionfile.Ecosystem

	// detect reports whether the ecosystem is present.
	detect func(t *tree) bool

	// versionFiles lists candidates in the ecosystem's priority order.
	versionFiles func(t *tree) []versionfile.Target

	// testCommands lists native test runners; pms are the detected package managers.
	testCommands func(t *tree, pms []string) []string
}

// rules is ordered by detection order. The version-file priority inside
// each rule decides which file is rewritten first and must not change.
var rules = []ecosystemRule{
	{
		eco: versionfile.EcosystemPython,
		detect: func(t *tree) bool {
			return t.hasAny("pyproject.toml", "setup.py", "setup.cfg", "requirements.txt", "Pipfile")
		},
		versionFiles: func(t *tree) []versionfile.Target {
			targets := targetsFor(t, versionfile.EcosystemPython, map[string]versionfile.Kind{
				"pyproject.toml": versionfile.KindPyproject,
				"setup.py":       versionfile.KindSetupPy,
				"setup.cfg":      versionfile.KindSetupCfg,
			}, "pyproject.toml", "setup.py", "setup.cfg")
			// Tool-only pyproject files have no table a version belongs in.
			if data := t.read("pyproject.toml"); data != nil && !versionfile.PyprojectHasMetadata(data) {
				targets = slices.DeleteFunc(targets, func(tg versionfile.Target) bool {
					return tg.Path == "pyproject.toml"
				})
			}
			if rel, ok := t.first("**/__version__.py", "**/_version.py"); ok {
				targets = append(targets, target(rel, versionfile.EcosystemPython, versionfile.KindPythonModule))
			}
			if t.has("VERSION") {
				targets = append(targets, target("VERSION", versionfile.EcosystemPython, versionfile.KindPlainText))
			}
			return targets
		},
		testCommands: pythonTestCommands,
	},
	{
		eco:    versionfile.EcosystemNode,
		detect: func(t *tree) bool { return t.has("package.json") },
		versionFiles: func(t *tree) []versionfile.Target {
			return []versionfile.Target{target("package.json", versionfile.EcosystemNode, versionfile.KindPackageJSON)}
		},
		testCommands: nodeTestCommands,
	},
	{
		eco:    versionfile.EcosystemGo,
		detect: func(t *tree) bool { return t.has("go.mod") },
		versionFiles: func(t *tree) []versionfile.Target {
			var targets []versionfile.Target
			if t.has("VERSION") {
				targets = append(targets, target("VERSION", versionfile.EcosystemGo, versionfile.KindPlainText))
			}
			if versionfile.HasVersionComment(t.read("go.mod")) {
				targets = append(targets, target("go.mod", versionfile.EcosystemGo, versionfile.KindGoMod))
			}
			return targets
		},
		testCommands: func(*tree, []string) []string { return []string{"go test ./..."} },
	},
	{
		eco:    versionfile.EcosystemRust,
		detect: func(t *tree) bool { return t.has("Cargo.toml") },
		versionFiles: func(t *tree) []versionfile.Target {
			return []versionfile.Target{target("Cargo.toml", versionfile.EcosystemRust, versionfile.KindCargo)}
		},
		testCommands: func(*tree, []string) []string { return []string{"cargo test"} },
	},
	{
		eco: versionfile.EcosystemJava,
		detect: func(t *tree) bool {
			return t.hasAny("pom.xml", "build.gradle", "build.gradle.kts")
		},
		versionFiles: func(t *tree) []versionfile.Target {
			return targetsFor(t, versionfile.EcosystemJava, map[string]versionfile.Kind{
				"pom.xml":          versionfile.KindPom,
				"build.gradle":     versionfile.KindGradle,
				"build.gradle.kts": versionfile.KindGradle,
			}, "pom.xml", "build.gradle", "build.gradle.kts")
		},
		testCommands: javaTestCommands,
	},
	{
		eco: versionfile.EcosystemDotNet,
		detect: func(t *tree) bool {
			if t.has("Directory.Build.props") {
				return true
			}
			_, ok := t.first("**/*.csproj", "**/*.fsproj", "*.sln")
			return ok
		},
		versionFiles: func(t *tree) []versionfile.Target {
			var targets []versionfile.Target
			if rel, ok := t.first("**/*.csproj", "**/*.fsproj"); ok {
				targets = append(targets, target(rel, versionfile.EcosystemDotNet, versionfile.KindMSBuild))
			}
			if t.has("Directory.Build.props") {
				targets = append(targets, target("Directory.Build.props", versionfile.EcosystemDotNet, versionfile.KindMSBuild))
			}
			return targets
		},
		testCommands: func(*tree, []string) []string { return []string{"dotnet test"} },
	},
	{
		eco: versionfile.EcosystemRuby,
		detect: func(t *tree) bool {
			if t.has("Gemfile") {
				return true
			}
			_, ok := t.first("*.gemspec")
			return ok
		},
		versionFiles: func(t *tree) []versionfile.Target {
			var targets []versionfile.Target
			if rel, ok := t.first("*.gemspec"); ok {
				targets = append(targets, target(rel, versionfile.EcosystemRuby, versionfile.KindGemspec))
			}
			if rel, ok := t.first("lib/**/version.rb"); ok {
				targets = append(targets, target(rel, versionfile.EcosystemRuby, versionfile.KindRubyConstant))
			}
			return targets
		},
		testCommands: rubyTestCommands,
	},
	{
		eco:    versionfile.EcosystemPHP,
		detect: func(t *tree) bool { return t.has("composer.json") },
		versionFiles: func(t *tree) []versionfile.Target {
			return []versionfile.Target{target("composer.json", versionfile.EcosystemPHP, versionfile.KindComposer)}
		},
		testCommands: phpTestCommands,
	},
}

func target(rel string, eco versionfile.Ecosystem, kind versionfile.Kind) versionfile.Target {
	return versionfile.Target{Path: rel, Ecosystem: eco, Kind: kind}
}

// targetsFor maps the existing files among order to targets.
func targetsFor(t *tree, eco versionfile.Ecosystem, kinds map[string]versionfile.Kind, order ...string) []versionfile.Target {
	var targets []versionfile.Target
	for _, rel := range t.existing(order...) {
		targets = append(targets, target(rel, eco, kinds[rel]))
	}
	return targets
}

func pythonTestCommands(t *tree, pms []string) []string {
	pytest := t.hasAny("pytest.ini", "conftest.py", "tests/conftest.py") ||
		t.contains("pyproject.toml", "[tool.pytest") ||
		t.contains("setup.cfg", "[tool:pytest]") ||
		t.contains("tox.ini", "[pytest]")
	if !pytest {
		_, pytest = t.first("tests/**/test_*.py", "test/**/test_*.py", "tests/**/*_test.py")
	}

	prefix := ""
	switch {
	case slices.Contains(pms, "poetry"):
		prefix = "poetry run "
	case slices.Contains(pms, "uv"):
		prefix = "uv run "
	case slices.Contains(pms, "pipenv"):
		prefix = "pipenv run "
	}

	switch {
	case pytest:
		return []string{prefix + "pytest"}
	case t.hasDir("tests") || t.hasDir("test"):
		return []string{prefix + "python -m unittest discover"}
	default:
		return nil
	}
}

// npmPlaceholderTest is the script "npm init" writes.
const npmPlaceholderTest = "no test specified"

func nodeTestCommands(t *tree, pms []string) []string {
	script := gjson.GetBytes(t.read("package.json"), "scripts.test")
	if script.Type != gjson.String || strings.TrimSpace(script.Str) == "" || strings.Contains(script.Str, npmPlaceholderTest) {
		return nil
	}
	switch {
	case slices.Contains(pms, "bun"):
		return []string{"bun run test"}
	case slices.Contains(pms, "pnpm"):
		return []string{"pnpm test"}
	case slices.Contains(pms, "yarn"):
		return []string{"yarn test"}
	default:
		return []string{"npm test"}
	}
}

func javaTestCommands(t *tree, _ []string) []string {
	switch {
	case t.has("pom.xml") && t.has("mvnw"):
		return []string{"./mvnw test"}
	case t.has("pom.xml"):
		return []string{"mvn test"}
	case t.has("gradlew"):
		return []string{"./gradlew test"}
	default:
		return []string{"gradle test"}
	}
}

func rubyTestCommands(t *tree, _ []string) []string {
	prefix := ""
	if t.has("Gemfile") {
		prefix = "bundle exec "
	}
	switch {
	case t.hasDir("spec"):
		return []string{prefix + "rspec"}
	case t.hasDir("test"):
		return []string{prefix + "rake test"}
	default:
		return nil
	}
}

func phpTestCommands(t *tree, _ []string) []string {
	if t.hasAny("phpunit.xml", "phpunit.xml.dist") {
		return []string{"vendor/bin/phpunit"}
	}
	if gjson.GetBytes(t.read("composer.json"), "scripts.test").Exists() {
		return []string{"composer test"}
	}
	return nil
}

// packageManagers maps lockfiles and wrappers to tool identifiers, in
// reporting order.
var packageManagers = []struct {
	file string
	name string
}{
	{"package-lock.json", "npm"},
	{"yarn.lock", "yarn"},
	{"pnpm-lock.yaml", "pnpm"},
	{"bun.lockb", "bun"},
	{"bun.lock", "bun"},
	{"poetry.lock", "poetry"},
	{"uv.lock", "uv"},
	{"Pipfile.lock", "pipenv"},
	{"requirements.txt", "pip"},
	{"Cargo.lock", "cargo"},
	{"go.sum", "go"},
	{"mvnw", "maven-wrapper"},
	{"gradlew", "gradle-wrapper"},
	{"Gemfile.lock", "bundler"},
	{"composer.lock", "composer"},
	{"packages.lock.json", "nuget"},
}

func detectPackageManagers(t *tree) []string {
	var out []string
	for _, pm := range packageManagers {
		if t.has(pm.file) && !slices.Contains(out, pm.name) {
			out = append(out, pm.name)
		}
	}
	return out
}

var (
	makeTarget     = regexp.MustCompile(`(?m)^(test|build)[ \t]*:([^=]|$)`)
	makeTestTarget = regexp.MustCompile(`(?m)^test[ \t]*:([^=]|$)`)
	justTestRecipe = regexp.MustCompile(`(?m)^@?test\b[^:\n]*:([^=]|$)`)
)

// detectBuildSystems evaluates the build-system predicates at the root.
func detectBuildSystems(t *tree) []BuildSystem {
	var systems []BuildSystem

	for _, name := range []string{"Makefile", "makefile", "GNUmakefile"} {
		data := t.read(name)
		if data == nil || !makeTarget.Match(data) {
			continue
		}
		systems = append(systems, BuildSystem{Name: "make", File: name, HasTest: makeTestTarget.Match(data)})
		break
	}

	for _, name := range []string{"justfile", "Justfile", ".justfile"} {
		if !t.has(name) {
			continue
		}
		systems = append(systems, BuildSystem{Name: "just", File: name, HasTest: justTestRecipe.Match(t.read(name))})
		break
	}

	for _, name := range []string{"Taskfile.yml", "Taskfile.yaml", "Taskfile.dist.yml", "Taskfile.dist.yaml"} {
		if !t.has(name) {
			continue
		}
		systems = append(systems, BuildSystem{Name: "task", File: name, HasTest: taskfileHasTest(t.read(name))})
		break
	}

	return systems
}
