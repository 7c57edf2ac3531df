package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pengolincoin/pengolin-deploy/internal/deployment/artifacts"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/infra/filesystem"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
	"gopkg.in/yaml.v3"
)

type (
	Generator struct {
		dir    string
		writer filesystem.Writer
	}

	// Run is everything a finished deployment reports.
	Run struct {
		ChainID   uint64
		RPCURL    string
		Deployed  []plan.Deployed
		Contracts map[plan.ContractName]artifacts.Contract
	}
)

func NewGenerator(dir string, writer filesystem.Writer) *Generator {
	return &Generator{
		dir:    dir,
		writer: writer,
	}
}

// Generate writes deployments.json and output.yaml into the output directory.
func (g *Generator) Generate(run Run) error {
	log := logger.Named("output").With("dir", g.dir)

	deployments := Deployments{
		ChainInfo: ChainInfo{ChainID: run.ChainID},
		Addresses: plan.Addresses(run.Deployed),
	}
	if err := g.writer.WriteJSON(g.DeploymentsPath(), deployments); err != nil {
		return fmt.Errorf("could not write deployments file: %w", err)
	}

	model := &Model{
		Network: Network{
			ChainID: run.ChainID,
			RPCURL:  run.RPCURL,
		},
		Contracts: make(map[string]ContractConfig, len(run.Deployed)),
	}
	for _, d := range run.Deployed {
		model.Contracts[strings.ToLower(string(d.Name))] = ContractConfig{
			Address: d.Address,
			TxHash:  d.TxHash,
			ABI:     SingleQuotedString(compactJSON(run.Contracts[d.Name].RawABI)),
		}
	}

	data, err := yaml.Marshal(model)
	if err != nil {
		return fmt.Errorf("could not marshal output model: %w", err)
	}

	if err := g.writer.WriteBytes(filepath.Join(g.dir, OutputFileName), data); err != nil {
		return fmt.Errorf("could not write output file: %w", err)
	}

	log.With("contracts", len(run.Deployed)).Info("deployment output written")

	return nil
}

func (g *Generator) DeploymentsPath() string {
	return filepath.Join(g.dir, DeploymentsFileName)
}

// ReadDeployments loads the deployments file written by a previous run.
func ReadDeployments(reader filesystem.Reader, dir string) (Deployments, error) {
	var deployments Deployments
	if err := reader.ReadJSON(filepath.Join(dir, DeploymentsFileName), &deployments); err != nil {
		return Deployments{}, fmt.Errorf("could not read deployments: %w", err)
	}
	return deployments, nil
}

func compactJSON(jsonStr string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(jsonStr)); err != nil {
		return jsonStr
	}
	return buf.String()
}
