package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/controller"
	"github.com/lotas/tabdedupe/internal/executor"
	"github.com/lotas/tabdedupe/internal/planner"
	"github.com/lotas/tabdedupe/internal/types"
)

type tabBody struct {
	ID        int    `json:"id"`
	WindowID  int    `json:"window_id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Discarded bool   `json:"discarded"`
}

type groupBody struct {
	Key   string    `json:"key"`
	Count int       `json:"count"`
	Tabs  []tabBody `json:"tabs"`
}

type statsBody struct {
	TotalTabs       int `json:"total_tabs"`
	TotalWindows    int `json:"total_windows"`
	Groups          int `json:"groups"`
	DuplicateGroups int `json:"duplicate_groups"`
	RedundantTabs   int `json:"redundant_tabs"`
}

type windowBody struct {
	WindowID  int  `json:"window_id"`
	TabCount  int  `json:"tab_count"`
	IsCurrent bool `json:"is_current"`
}

type planBody struct {
	Operation           string `json:"operation"`
	Close               []int  `json:"close"`
	Move                []int  `json:"move"`
	DestinationWindowID int    `json:"destination_window_id,omitempty"`
	Description         string `json:"description"`
}

type outcomeBody struct {
	NoOp       bool              `json:"noop"`
	Closed     []int             `json:"closed"`
	Moved      []int             `json:"moved"`
	Failed     map[string]string `json:"failed,omitempty"`
	FocusError string            `json:"focus_error,omitempty"`
}

type preferencesBody struct {
	MatchMode              string `json:"match_mode" doc:"host, host+path, host+path-no-www or host+path+qs"`
	ViewMode               string `json:"view_mode" doc:"duplicates or all"`
	WindowOverviewExpanded bool   `json:"window_overview_expanded"`
}

func toTabBodies(tabs []types.Tab) []tabBody {
	out := make([]tabBody, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, tabBody{ID: t.ID, WindowID: t.WindowID, URL: t.URL, Title: t.Title, Discarded: t.Discarded})
	}
	return out
}

func toPlanBody(p types.Plan) planBody {
	return planBody{
		Operation:           string(p.Operation),
		Close:               nonNil(p.Close),
		Move:                nonNil(p.Move),
		DestinationWindowID: p.DestinationWindowID,
		Description:         planner.Describe(p),
	}
}

func toOutcomeBody(o types.Outcome) outcomeBody {
	body := outcomeBody{
		NoOp:       o.NoOp,
		Closed:     nonNil(o.Closed),
		Moved:      nonNil(o.Moved),
		FocusError: o.FocusError,
	}
	if len(o.Failed) > 0 {
		body.Failed = make(map[string]string, len(o.Failed))
		for id, msg := range o.Failed {
			body.Failed[strconv.Itoa(id)] = msg
		}
	}
	return body
}

func toPreferencesBody(p types.Preferences) preferencesBody {
	return preferencesBody{
		MatchMode:              string(p.MatchMode),
		ViewMode:               string(p.ViewMode),
		WindowOverviewExpanded: p.WindowOverviewExpanded,
	}
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

// matchMode resolves an optional mode parameter against the active
// preferences.
func matchMode(svc Service, s string) (types.MatchMode, error) {
	if s == "" {
		return svc.Preferences().MatchMode, nil
	}
	m, err := types.ParseMatchMode(s)
	if err != nil {
		return "", huma.Error422UnprocessableEntity(err.Error())
	}
	return m, nil
}

func viewMode(svc Service, s string) (types.ViewMode, error) {
	if s == "" {
		return svc.Preferences().ViewMode, nil
	}
	v, err := types.ParseViewMode(s)
	if err != nil {
		return "", huma.Error422UnprocessableEntity(err.Error())
	}
	return v, nil
}

func registerHealthHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}

func registerGroupHandlers(api huma.API, svc Service) {
	type groupsInput struct {
		Mode  string `query:"mode" doc:"Match mode. Defaults to the stored preference."`
		View  string `query:"view" doc:"duplicates or all. Defaults to the stored preference."`
		Query string `query:"q" doc:"Case-insensitive search over key, URL and title."`
	}
	type groupsOutput struct {
		Body struct {
			Mode            string      `json:"mode"`
			View            string      `json:"view"`
			Generation      uint64      `json:"generation"`
			CurrentWindowID int         `json:"current_window_id"`
			Stats           statsBody   `json:"stats"`
			Groups          []groupBody `json:"groups"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-groups", Method: http.MethodGet, Path: "/api/v1/groups", Summary: "Refresh and list tab groups", Tags: []string{"Groups"}},
		func(ctx context.Context, input *groupsInput) (*groupsOutput, error) {
			mode, err := matchMode(svc, input.Mode)
			if err != nil {
				return nil, err
			}
			view, err := viewMode(svc, input.View)
			if err != nil {
				return nil, err
			}
			snap, err := svc.RefreshMode(ctx, mode)
			if err != nil {
				return nil, mapErr(err)
			}
			groups := analyzer.FilterGroups(snap.View(view), input.Query)

			out := &groupsOutput{}
			out.Body.Mode = string(mode)
			out.Body.View = string(view)
			out.Body.Generation = snap.Generation
			out.Body.CurrentWindowID = snap.CurrentWindowID
			st := snap.Stats()
			out.Body.Stats = statsBody{
				TotalTabs:       st.TotalTabs,
				TotalWindows:    st.TotalWindows,
				Groups:          st.Groups,
				DuplicateGroups: st.DuplicateGroups,
				RedundantTabs:   st.RedundantTabs,
			}
			out.Body.Groups = make([]groupBody, 0, len(groups))
			for _, g := range groups {
				out.Body.Groups = append(out.Body.Groups, groupBody{Key: g.Key, Count: len(g.Tabs), Tabs: toTabBodies(g.Tabs)})
			}
			return out, nil
		})
}

func registerWindowHandlers(api huma.API, svc Service) {
	type windowsOutput struct {
		Body struct {
			CurrentWindowID int          `json:"current_window_id"`
			Windows         []windowBody `json:"windows"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-windows", Method: http.MethodGet, Path: "/api/v1/windows", Summary: "List windows with tab counts", Tags: []string{"Windows"}},
		func(ctx context.Context, input *struct{}) (*windowsOutput, error) {
			snap, err := svc.RefreshMode(ctx, svc.Preferences().MatchMode)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &windowsOutput{}
			out.Body.CurrentWindowID = snap.CurrentWindowID
			out.Body.Windows = make([]windowBody, 0, len(snap.Windows))
			for _, w := range snap.Windows {
				out.Body.Windows = append(out.Body.Windows, windowBody{WindowID: w.WindowID, TabCount: w.TabCount, IsCurrent: w.IsCurrent})
			}
			return out, nil
		})

	type hostsInput struct {
		WindowID int `path:"window_id" minimum:"1"`
	}
	type hostRow struct {
		Host  string `json:"host"`
		Count int    `json:"count"`
	}
	type hostsOutput struct {
		Body struct {
			WindowID int       `json:"window_id"`
			Hosts    []hostRow `json:"hosts"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "window-hosts", Method: http.MethodGet, Path: "/api/v1/windows/{window_id}/hosts", Summary: "Host breakdown of one window", Tags: []string{"Windows"}},
		func(ctx context.Context, input *hostsInput) (*hostsOutput, error) {
			hosts, err := svc.WindowHosts(ctx, input.WindowID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &hostsOutput{}
			out.Body.WindowID = input.WindowID
			out.Body.Hosts = make([]hostRow, 0, len(hosts))
			for _, h := range hosts {
				out.Body.Hosts = append(out.Body.Hosts, hostRow{Host: h.Host, Count: h.Count})
			}
			return out, nil
		})
}

type actionRequestBody struct {
	Operation      string `json:"operation" doc:"Planning operation, e.g. keep-first or consolidate-duplicates"`
	Key            string `json:"key,omitempty" doc:"Group key for per-group operations"`
	TabID          int    `json:"tab_id,omitempty"`
	TargetWindowID int    `json:"target_window_id,omitempty" doc:"Destination window. Defaults to the current window."`
	SourceWindowID int    `json:"source_window_id,omitempty" doc:"Window to merge for merge-window"`
	Mode           string `json:"mode,omitempty" doc:"Match mode the groups are built with. Defaults to the stored preference."`
}

// request parses the body. Tabs are always re-read with the resolved mode
// before planning, so keys match what GET /api/v1/groups returns for it.
func (b actionRequestBody) request(svc Service) (controller.ActionRequest, error) {
	op, err := types.ParseOperation(b.Operation)
	if err != nil {
		return controller.ActionRequest{}, huma.Error422UnprocessableEntity(err.Error())
	}
	mode, err := matchMode(svc, b.Mode)
	if err != nil {
		return controller.ActionRequest{}, err
	}
	return controller.ActionRequest{
		Mode:           mode,
		Op:             op,
		Key:            b.Key,
		TabID:          b.TabID,
		TargetWindowID: b.TargetWindowID,
		SourceWindowID: b.SourceWindowID,
	}, nil
}

func registerActionHandlers(api huma.API, svc Service) {
	type actionInput struct {
		Body actionRequestBody
	}
	type planOutput struct {
		Body planBody
	}
	huma.Register(api, huma.Operation{OperationID: "plan-action", Method: http.MethodPost, Path: "/api/v1/plans", Summary: "Compute a plan without executing it", Tags: []string{"Actions"}},
		func(ctx context.Context, input *actionInput) (*planOutput, error) {
			req, err := input.Body.request(svc)
			if err != nil {
				return nil, err
			}
			plan, err := svc.Plan(ctx, req)
			if err != nil {
				return nil, mapErr(err)
			}
			return &planOutput{Body: toPlanBody(plan)}, nil
		})

	type actionOutput struct {
		Body struct {
			Plan         planBody    `json:"plan"`
			Outcome      outcomeBody `json:"outcome"`
			PromptReview bool        `json:"prompt_review"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "apply-action", Method: http.MethodPost, Path: "/api/v1/actions", Summary: "Plan and execute an action", Tags: []string{"Actions"}},
		func(ctx context.Context, input *actionInput) (*actionOutput, error) {
			req, err := input.Body.request(svc)
			if err != nil {
				return nil, err
			}
			res, err := svc.Apply(ctx, req)
			var partial *executor.PartialFailureError
			if err != nil && !errors.As(err, &partial) {
				return nil, mapErr(err)
			}
			out := &actionOutput{}
			out.Body.Plan = toPlanBody(res.Plan)
			out.Body.Outcome = toOutcomeBody(res.Outcome)
			out.Body.PromptReview = res.PromptReview
			return out, nil
		})

	type switchInput struct {
		TabID int `path:"tab_id" minimum:"1"`
	}
	type switchOutput struct {
		Body struct {
			TabID  int    `json:"tab_id"`
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "switch-to-tab", Method: http.MethodPost, Path: "/api/v1/tabs/{tab_id}/switch", Summary: "Focus a tab and its window", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *switchInput) (*switchOutput, error) {
			if err := svc.SwitchTo(ctx, input.TabID); err != nil {
				return nil, mapErr(err)
			}
			out := &switchOutput{}
			out.Body.TabID = input.TabID
			out.Body.Status = "switched"
			return out, nil
		})
}

func registerPreferenceHandlers(api huma.API, svc Service) {
	type preferencesOutput struct {
		Body preferencesBody
	}
	huma.Register(api, huma.Operation{OperationID: "get-preferences", Method: http.MethodGet, Path: "/api/v1/preferences", Summary: "Get the active preferences", Tags: []string{"Preferences"}},
		func(ctx context.Context, input *struct{}) (*preferencesOutput, error) {
			return &preferencesOutput{Body: toPreferencesBody(svc.Preferences())}, nil
		})

	type preferencesInput struct {
		Body preferencesBody
	}
	huma.Register(api, huma.Operation{OperationID: "set-preferences", Method: http.MethodPut, Path: "/api/v1/preferences", Summary: "Replace the preferences", Tags: []string{"Preferences"}},
		func(ctx context.Context, input *preferencesInput) (*preferencesOutput, error) {
			mode, err := types.ParseMatchMode(input.Body.MatchMode)
			if err != nil {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			view, err := types.ParseViewMode(input.Body.ViewMode)
			if err != nil {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			p := types.Preferences{MatchMode: mode, ViewMode: view, WindowOverviewExpanded: input.Body.WindowOverviewExpanded}
			if err := svc.SetPreferences(ctx, p); err != nil {
				return nil, mapErr(err)
			}
			return &preferencesOutput{Body: toPreferencesBody(svc.Preferences())}, nil
		})
}
