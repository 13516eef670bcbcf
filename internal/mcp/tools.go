package mcp

import "github.com/mark3labs/mcp-go/mcp"

var refreshTool = mcp.NewTool("cortex_refresh",
	mcp.WithDescription("Re-scan the workspace and rebuild the fact store. Uses the on-disk cache when no repo directory changed."),
	mcp.WithBoolean("force_full",
		mcp.Description("Ignore the cache and extract every repo again"),
	),
)

var searchTool = mcp.NewTool("cortex_search",
	mcp.WithDescription("Ranked search over every fact: contracts, mappings, docs, ADRs, glossary terms, tables and more."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Free-text query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 20)"),
	),
	mcp.WithBoolean("semantic",
		mcp.Description("Use the embedding index instead of keyword ranking"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var lookupTool = mcp.NewTool("cortex_lookup",
	mcp.WithDescription("Look up facts by file path, repo id, title fragment or reference such as ADR-12."),
	mcp.WithString("identifier",
		mcp.Required(),
		mcp.Description("Path, repo, title fragment or reference"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var repoTool = mcp.NewTool("cortex_repo",
	mcp.WithDescription("Summary of one repo: variant, description, endpoint and caller counts, environment variables and outgoing mappings."),
	mcp.WithString("repo",
		mcp.Required(),
		mcp.Description("Repo id (directory name)"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var contractsTool = mcp.NewTool("cortex_contracts",
	mcp.WithDescription("HTTP endpoints a service exposes."),
	mcp.WithString("service",
		mcp.Description("Repo id to restrict to"),
	),
	mcp.WithString("path",
		mcp.Description("Path fragment to match"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var dependenciesTool = mcp.NewTool("cortex_dependencies",
	mcp.WithDescription("Configuration reads that point one repo at another service."),
	mcp.WithString("from",
		mcp.Description("Calling repo id"),
	),
	mcp.WithString("to",
		mcp.Description("Called service id"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var mappingsTool = mcp.NewTool("cortex_mappings",
	mcp.WithDescription("Resolved caller to callee relationships with the endpoints each caller uses."),
	mcp.WithString("from",
		mcp.Description("Calling repo id"),
	),
	mcp.WithString("to",
		mcp.Description("Called service id"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var whoCallsTool = mcp.NewTool("cortex_who_calls",
	mcp.WithDescription("Every repo that calls an endpoint path, with the files making the call. Use before changing an endpoint."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Endpoint path or fragment, e.g. /v1/widgets"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var decisionsTool = mcp.NewTool("cortex_decisions",
	mcp.WithDescription("Architecture decision records and post-mortems, optionally about a topic."),
	mcp.WithString("topic",
		mcp.Description("Topic to match against title, content and tags"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var glossaryTool = mcp.NewTool("cortex_glossary",
	mcp.WithDescription("Domain terms derived from route segments and DTO names."),
	mcp.WithString("term",
		mcp.Description("Term fragment"),
	),
	mcp.WithString("repo",
		mcp.Description("Repo id to restrict to"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var tablesTool = mcp.NewTool("cortex_tables",
	mcp.WithDescription("Database tables created or altered by SQL migrations."),
	mcp.WithString("repo",
		mcp.Description("Repo id to restrict to"),
	),
	mcp.WithString("table",
		mcp.Description("Table name fragment"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var changelogTool = mcp.NewTool("cortex_changelog",
	mcp.WithDescription("Version blocks from CHANGELOG.md files."),
	mcp.WithString("repo",
		mcp.Description("Repo id to restrict to"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var envTool = mcp.NewTool("cortex_env",
	mcp.WithDescription("Environment variables a repo reads."),
	mcp.WithString("repo",
		mcp.Required(),
		mcp.Description("Repo id"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var serviceGraphTool = mcp.NewTool("cortex_service_graph",
	mcp.WithDescription("Mermaid flowchart of which services call which. Dashed edges are configuration-only dependencies."),
	mcp.WithReadOnlyHintAnnotation(true),
)
