package doc

// yamlDocument is the intermediate structure for parsing document YAML.
// It matches the source format before transformation to the Document model.
type yamlDocument struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Relation    *yamlRelation  `yaml:"relation"`
	Relations   []yamlRelation `yaml:"relations"`
	AppliesTo   *yamlSelector  `yaml:"applies_to"`
	Sections    []yamlSection  `yaml:"sections"`
}

// yamlRelation is an intermediate relation structure.
type yamlRelation struct {
	Kind   string `yaml:"kind"`
	Target string `yaml:"target"`
}

// yamlSelector is an intermediate applicability selector structure.
type yamlSelector struct {
	Language string   `yaml:"language"`
	Signals  []string `yaml:"signals"`
}

// yamlSection is an intermediate body section structure.
// Each section yields one directive; topic is the section heading.
type yamlSection struct {
	Topic        string   `yaml:"topic"`
	Mode         string   `yaml:"mode"` // empty defaults to "override"
	Rule         string   `yaml:"rule"`
	Examples     []string `yaml:"examples"`
	AntiPatterns []string `yaml:"anti_patterns"`
}
