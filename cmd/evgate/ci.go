package evgate

import (
	"fmt"

	"github.com/spf13/cobra"
)

const ciInstall = "go install github.com/redactyl/evgate@latest"

func init() {
	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline that scans, normalizes and gates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, content, err := ciTemplate(provider)
			if err != nil {
				return err
			}
			if err := writeNew(path, []byte(content), force); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: github | gitlab | bitbucket | azure")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	_ = initCmd.MarkFlagRequired("provider")
	ci.AddCommand(initCmd)
}

func ciTemplate(provider string) (path, content string, err error) {
	switch provider {
	case "github":
		return ".github/workflows/evgate.yml", `name: security-gate
on: [push, pull_request]
jobs:
  gate:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-go@v5
        with:
          go-version: '1.25'
      - name: Scan
        run: |
          pip install semgrep
          semgrep scan --config auto --json --output semgrep.json || true
          docker run --rm -v "$PWD:/repo" zricethezav/gitleaks:latest detect --source /repo --report-format json --report-path /repo/gitleaks.json || true
      - name: Gate
        run: |
          ` + ciInstall + `
          evgate normalize semgrep semgrep.json
          evgate normalize gitleaks gitleaks.json
          evgate evaluate --template github
`, nil
	case "gitlab":
		return ".gitlab-ci.yml", `stages: [gate]
gate:
  stage: gate
  image: golang:1.25
  script:
    - ` + ciInstall + `
    - evgate normalize semgrep semgrep.json
    - evgate normalize gitleaks gitleaks.json
    - evgate evaluate --sarif | tee evgate.sarif
    - evgate evaluate
  artifacts:
    when: always
    paths:
      - evidence/
      - evgate.sarif
`, nil
	case "bitbucket":
		return "bitbucket-pipelines.yml", `pipelines:
  default:
    - step:
        name: Security Gate
        image: golang:1.25
        caches:
          - go
        script:
          - ` + ciInstall + `
          - evgate normalize semgrep semgrep.json
          - evgate normalize gitleaks gitleaks.json
          - evgate evaluate
        artifacts:
          - evidence/**
`, nil
	case "azure":
		return "azure-pipelines.yml", `trigger:
- main

pool:
  vmImage: 'ubuntu-latest'

steps:
- task: GoTool@0
  inputs:
    version: '1.25.x'
- script: |
    ` + ciInstall + `
    $(go env GOPATH)/bin/evgate normalize semgrep semgrep.json
    $(go env GOPATH)/bin/evgate normalize gitleaks gitleaks.json
    $(go env GOPATH)/bin/evgate evaluate
  displayName: 'Security Gate'
- publish: evidence
  artifact: evidence
  condition: succeededOrFailed()
`, nil
	default:
		return "", "", fmt.Errorf("unknown --provider %q. Supported: github, gitlab, bitbucket, azure", provider)
	}
}
