package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/pages"
	"github.com/rs/zerolog/log"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// mutationDoneMsg reports the end of a write. The originating view rolls
// back optimistic changes when err is set.
type mutationDoneMsg struct {
	viewID int64
	action string
	ref    resources.Ref
	obj    *unstructured.Unstructured
	err    error
}

func (m mutationDoneMsg) title() string {
	if m.err != nil {
		return m.action + " failed"
	}
	return m.action + " succeeded"
}

func (m mutationDoneMsg) message() string {
	if m.ref.Name == "" {
		return m.ref.Type.Kind
	}
	return fmt.Sprintf("%s %s", m.ref.Type.Singular, m.ref.Name)
}

func (e *Env) mutate(viewID int64, action string, ref resources.Ref, fn func() (*unstructured.Unstructured, error)) tea.Cmd {
	return func() tea.Msg {
		obj, err := fn()
		logger := log.With().Str("action", action).Str("ref", ref.String()).Logger()
		if err != nil {
			logger.Warn().Err(err).Msg("Mutation failed")
		} else {
			logger.Info().Msg("Mutation succeeded")
			invalidateResource(e.Cache, ref.Cluster, ref.Type)
		}
		return mutationDoneMsg{viewID: viewID, action: action, ref: ref, obj: obj, err: err}
	}
}

func (e *Env) deleteCmd(viewID int64, ref resources.Ref) tea.Cmd {
	return e.mutate(viewID, "Delete", ref, func() (*unstructured.Unstructured, error) {
		ctx, cancel := e.requestContext()
		defer cancel()
		return nil, e.Backend.Delete(ctx, ref)
	})
}

func (e *Env) updateCmd(viewID int64, ref resources.Ref, obj *unstructured.Unstructured) tea.Cmd {
	return e.mutate(viewID, "Update", ref, func() (*unstructured.Unstructured, error) {
		ctx, cancel := e.requestContext()
		defer cancel()
		return e.Backend.Update(ctx, ref, obj)
	})
}

func (e *Env) createCmd(viewID int64, cluster string, rt resources.ResourceType, obj *unstructured.Unstructured) tea.Cmd {
	ref := resources.RefFor(cluster, rt, obj)
	return e.mutate(viewID, "Create", ref, func() (*unstructured.Unstructured, error) {
		ctx, cancel := e.requestContext()
		defer cancel()
		return e.Backend.Create(ctx, cluster, rt, obj)
	})
}

func (e *Env) scaleCmd(viewID int64, ref resources.Ref, replicas int32) tea.Cmd {
	return e.mutate(viewID, "Scale", ref, func() (*unstructured.Unstructured, error) {
		ctx, cancel := e.requestContext()
		defer cancel()
		return nil, e.Backend.Scale(ctx, ref, replicas)
	})
}

func (e *Env) restartCmd(viewID int64, ref resources.Ref) tea.Cmd {
	return e.mutate(viewID, "Restart", ref, func() (*unstructured.Unstructured, error) {
		ctx, cancel := e.requestContext()
		defer cancel()
		return nil, e.Backend.Restart(ctx, ref)
	})
}

func (e *Env) cordonCmd(viewID int64, ref resources.Ref, unschedulable bool) tea.Cmd {
	action := "Uncordon"
	if unschedulable {
		action = "Cordon"
	}
	return e.mutate(viewID, action, ref, func() (*unstructured.Unstructured, error) {
		ctx, cancel := e.requestContext()
		defer cancel()
		return nil, e.Backend.Cordon(ctx, ref.Cluster, ref.Name, unschedulable)
	})
}

// editModal opens obj in the YAML editor and saves it back with Update.
// Secret data is left unmasked (still base64) so the saved manifest keeps
// the real values.
func (e *Env) editModal(viewID int64, ref resources.Ref, obj *unstructured.Unstructured) (Modal, error) {
	text, err := pages.ToYAML(obj, true)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Edit %s %s", ref.Type.Singular, ref.Name)
	return NewEditorModal(e.Styles, e.Keys, title, text, func(edited string) (tea.Cmd, error) {
		updated, err := pages.FromYAML(edited)
		if err != nil {
			return nil, err
		}
		if updated.GetName() != ref.Name {
			return nil, fmt.Errorf("metadata.name cannot change (was %q)", ref.Name)
		}
		return e.updateCmd(viewID, ref, updated), nil
	}), nil
}

// createModal opens a create template for rt
func (e *Env) createModal(viewID int64, cluster, namespace string, rt resources.ResourceType) Modal {
	text := pages.For(rt).CreateTemplate(rt, namespace)
	title := fmt.Sprintf("Create %s in %s", rt.Singular, cluster)
	return NewEditorModal(e.Styles, e.Keys, title, text, func(edited string) (tea.Cmd, error) {
		obj, err := pages.FromYAML(edited)
		if err != nil {
			return nil, err
		}
		if obj.GetKind() != rt.Kind && rt.Kind != "" {
			return nil, fmt.Errorf("kind must be %s", rt.Kind)
		}
		return e.createCmd(viewID, cluster, rt, obj), nil
	})
}
