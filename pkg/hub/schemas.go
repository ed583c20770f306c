package hub

import (
	"embed"

	"github.com/aira-hq/hubclient/pkg/apiclient"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	userSchema       = mustSchema("user")
	ruleSchema       = mustSchema("rule")
	rulesSchema      = mustSchema("rules")
	connectorsSchema = mustSchema("connectors")
	connectSchema    = mustSchema("connect")
	groupsSchema     = mustSchema("groups")
	linkCodeSchema   = mustSchema("link_code")
)

func mustSchema(name string) *apiclient.JSONSchema {
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		panic(err)
	}
	return apiclient.MustCompileSchema(name, raw)
}
