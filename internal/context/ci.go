package context

// ciProvider identifies a CI service by the variable it always sets.
type ciProvider struct {
	name   string
	marker string
	build  string
}

// ciProviders is checked in order; the generic CI variable comes last.
var ciProviders = []ciProvider{
	{name: "github-actions", marker: "GITHUB_ACTIONS", build: "GITHUB_RUN_ID"},
	{name: "gitlab", marker: "GITLAB_CI", build: "CI_PIPELINE_ID"},
	{name: "azure-pipelines", marker: "TF_BUILD", build: "BUILD_BUILDID"},
	{name: "circleci", marker: "CIRCLECI", build: "CIRCLE_BUILD_NUM"},
	{name: "buildkite", marker: "BUILDKITE", build: "BUILDKITE_BUILD_NUMBER"},
	{name: "bitbucket", marker: "BITBUCKET_BUILD_NUMBER", build: "BITBUCKET_BUILD_NUMBER"},
	{name: "teamcity", marker: "TEAMCITY_VERSION", build: "BUILD_NUMBER"},
	{name: "jenkins", marker: "JENKINS_URL", build: "BUILD_NUMBER"},
	{name: "travis", marker: "TRAVIS", build: "TRAVIS_BUILD_NUMBER"},
	{name: "ci", marker: "CI"},
}

// DetectCI returns the CI provider and build identifier from the
// environment, or empty strings outside CI. A marker set to "false" or
// "0" does not count.
func DetectCI(getenv func(string) string) (provider, build string) {
	for _, p := range ciProviders {
		switch getenv(p.marker) {
		case "", "false", "0":
			continue
		}
		if p.build != "" {
			build = getenv(p.build)
		}
		return p.name, build
	}
	return "", ""
}
