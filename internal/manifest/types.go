package manifest

// Default values reproduce the classic bootstrap layout: a pyenv/ virtual
// environment next to a run.py entry point, requirements discovered in the
// project root or one level under src/.
const (
	DefaultFileName   = "pyboot.yaml"
	AltFileName       = "pyboot.yml"
	DefaultVenvDir    = "pyenv"
	DefaultEntrypoint = "run.py"
)

// Manifest is the pyboot.yaml project manifest. Every field is optional;
// zero values fall back to the defaults applied by ApplyDefaults, so a
// project without a manifest still bootstraps.
type Manifest struct {
	Name           string              `yaml:"name,omitempty" json:"name,omitempty"`
	Python         PythonSpec          `yaml:"python,omitempty" json:"python,omitempty"`
	Venv           VenvSpec            `yaml:"venv,omitempty" json:"venv,omitempty"`
	Requirements   []string            `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	Pyproject      string              `yaml:"pyproject,omitempty" json:"pyproject,omitempty"`
	Entrypoint     string              `yaml:"entrypoint,omitempty" json:"entrypoint,omitempty"`
	Args           []string            `yaml:"args,omitempty" json:"args,omitempty"`
	Env            map[string]string   `yaml:"env,omitempty" json:"env,omitempty"`
	EnvFiles       []string            `yaml:"env_files,omitempty" json:"env_files,omitempty"`
	SystemPackages map[string][]string `yaml:"system_packages,omitempty" json:"system_packages,omitempty"`
	Hooks          Hooks               `yaml:"hooks,omitempty" json:"hooks,omitempty"`
}

// PythonSpec selects and constrains the interpreter used to build the
// virtual environment.
type PythonSpec struct {
	// Version is a PEP 440 specifier the interpreter must satisfy,
	// e.g. ">=3.9" or "~=3.11". Empty means any version.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
	// Binary overrides interpreter discovery with an explicit name or path.
	Binary string `yaml:"binary,omitempty" json:"binary,omitempty"`
}

// VenvSpec describes the virtual environment to build.
type VenvSpec struct {
	Dir                string `yaml:"dir,omitempty" json:"dir,omitempty"`
	Prompt             string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	SystemSitePackages bool   `yaml:"system_site_packages,omitempty" json:"system_site_packages,omitempty"`
}

// Hooks are POSIX shell snippets run at fixed points of the bootstrap, with
// the virtual environment activated.
type Hooks struct {
	PreInstall  string `yaml:"pre_install,omitempty" json:"pre_install,omitempty"`
	PostInstall string `yaml:"post_install,omitempty" json:"post_install,omitempty"`
	PreRun      string `yaml:"pre_run,omitempty" json:"pre_run,omitempty"`
}

// KnownManagerFamilies lists the system_packages keys the schema accepts,
// in detection order.
var KnownManagerFamilies = []string{"apt", "dnf", "apk", "pacman", "zypper", "brew"}

// DefaultSystemPackages returns the per-family package sets installed when a
// project does not declare its own. The apt set is the classic toolchain
// needed to build C extensions and create venvs on Debian-family hosts.
func DefaultSystemPackages() map[string][]string {
	return map[string][]string{
		"apt":    {"build-essential", "python3-dev", "python3-venv"},
		"dnf":    {"gcc", "gcc-c++", "make", "python3-devel"},
		"apk":    {"build-base", "python3-dev"},
		"pacman": {"base-devel", "python"},
		"zypper": {"gcc", "python3-devel"},
		"brew":   {},
	}
}

// ApplyDefaults fills zero-valued fields with the built-in defaults.
// Requirements stays empty here: discovery is filesystem-dependent and
// handled by DiscoverRequirements at the point of use.
func (m *Manifest) ApplyDefaults() {
	if m.Venv.Dir == "" {
		m.Venv.Dir = DefaultVenvDir
	}
	if m.Entrypoint == "" {
		m.Entrypoint = DefaultEntrypoint
	}
	if m.SystemPackages == nil {
		m.SystemPackages = DefaultSystemPackages()
	}
}

// Default returns a manifest equivalent to an absent pyboot.yaml.
func Default() *Manifest {
	m := &Manifest{}
	m.ApplyDefaults()
	return m
}
