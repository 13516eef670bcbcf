package aggregate

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/front"
)

func frontEntries(repo discovery.Repo, res front.Result) []facts.Entry {
	var out []facts.Entry
	for _, r := range res.Routes {
		out = append(out, facts.New(facts.KindFrontRoute, repo.ID, r.SourcePath, "Route "+r.Path,
			fmt.Sprintf("%s route %s (%s) renders %s.", repo.ID, r.Path, r.RouteKey, r.ComponentName),
			[]string{"front-route", r.RouteKey, r.ComponentName},
			facts.Meta{"path": r.Path, "routeKey": r.RouteKey, "componentName": r.ComponentName}, 0))
	}

	for _, ep := range res.Endpoints {
		content := fmt.Sprintf("%s %s.%s calls %s %s.", repo.ID, ep.ServiceName, ep.MethodName, ep.HTTPMethod, ep.PathPattern)
		if len(ep.ParamNames) > 0 {
			content += " Params: " + strings.Join(ep.ParamNames, ", ") + "."
		}
		meta := facts.Meta{
			"serviceName": ep.ServiceName,
			"methodName":  ep.MethodName,
			"httpMethod":  ep.HTTPMethod,
			"pathPattern": ep.PathPattern,
		}
		if len(ep.ParamNames) > 0 {
			meta["paramNames"] = ep.ParamNames
		}
		out = append(out, facts.New(facts.KindServiceEndpoint, repo.ID, ep.SourcePath, ep.ServiceName+"."+ep.MethodName, content,
			[]string{"service-endpoint", strings.ToLower(ep.HTTPMethod), ep.ServiceName, ep.MethodName}, meta, 0))
	}

	for _, u := range res.Usages {
		var title, content string
		tags := []string{"front-usage"}
		meta := facts.Meta{}
		if u.ServiceName != "" {
			title = u.ServiceName + " used in " + u.SourcePath
			content = fmt.Sprintf("%s uses %s.", u.SourcePath, u.ServiceName)
			if len(u.InvokedMethods) > 0 {
				content += " Invokes: " + strings.Join(u.InvokedMethods, ", ") + "."
				meta["invokedMethods"] = u.InvokedMethods
			}
			tags = append(tags, u.ServiceName)
			meta["serviceName"] = u.ServiceName
		} else {
			title = u.URLLiteral + " used in " + u.SourcePath
			content = fmt.Sprintf("%s calls %s.", u.SourcePath, u.URLLiteral)
			tags = append(tags, u.PathFragment)
			meta["pathFragment"] = u.PathFragment
			meta["urlLiteral"] = u.URLLiteral
		}
		out = append(out, facts.New(facts.KindFrontEndpointUsage, repo.ID, u.SourcePath, title, content, tags, meta, 0))
	}

	for _, re := range res.RouteEndpoints {
		var used []string
		for _, ep := range re.Endpoints {
			used = append(used, fmt.Sprintf("%s %s (%s)", ep.HTTPMethod, ep.PathPattern, ep.MethodName))
		}
		content := fmt.Sprintf("Route %s (%s) uses no known endpoints.", re.Path, re.ComponentName)
		if len(used) > 0 {
			content = fmt.Sprintf("Route %s (%s) uses: %s.", re.Path, re.ComponentName, strings.Join(used, ", "))
		}
		out = append(out, facts.New(facts.KindRouteEndpoints, repo.ID, re.SourcePath, "Route "+re.Path+" endpoints", content,
			[]string{"route-endpoints", re.RouteKey},
			facts.Meta{"path": re.Path, "routeKey": re.RouteKey, "componentName": re.ComponentName, "endpoints": re.Endpoints}, 0))
	}

	for _, s := range res.Schemas {
		props := make([]string, len(s.Properties))
		for i, p := range s.Properties {
			props[i] = p.Name + ": " + p.Type
		}
		out = append(out, facts.New(facts.KindResponseSchema, repo.ID, s.SourcePath, s.TypeName,
			fmt.Sprintf("Type %s { %s }.", s.TypeName, strings.Join(props, "; ")),
			[]string{"response-schema", s.TypeName},
			facts.Meta{"typeName": s.TypeName, "properties": s.Properties}, s.Line))
	}
	return out
}
