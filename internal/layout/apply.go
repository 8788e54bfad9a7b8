package layout

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zjrosen/formtree/internal/formtree"
	"github.com/zjrosen/formtree/internal/log"
	"github.com/zjrosen/formtree/internal/pubsub"
	"github.com/zjrosen/formtree/internal/registry"
	"github.com/zjrosen/formtree/internal/tracing"
)

const tracerName = "github.com/zjrosen/formtree/internal/layout"

// ApplyReport summarises an Apply call.
type ApplyReport struct {
	Forms int

	// Attached lists the paths of registered elements in registration order.
	Attached []string

	// Skipped lists element paths that were already taken, e.g. by a field
	// declared inline in a form.
	Skipped []string

	// Unattached lists elements whose parent never became a group. Their
	// registrations were dropped.
	Unattached []ElementDef
}

// Apply registers l into reg. Every element waits for its parent through
// registry.OnAvailable before any form is registered, so element order in
// the file does not matter.
func Apply(ctx context.Context, reg *registry.Registry, l *Layout) (*ApplyReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanLayoutApply)
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrSessionID, reg.SessionID()))

	report := &ApplyReport{}
	pending := make([]*pubsub.Subscription, len(l.Elements))

	for i, el := range l.Elements {
		el := el
		parent, err := formtree.ParsePath(el.Parent)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			unsubscribeAll(pending)
			return nil, fmt.Errorf("elements[%d]: %w", i, err)
		}
		path := parent.Child(el.Name).String()
		sub, err := reg.OnAvailable(el.Parent, func(g *formtree.Group) {
			if g.Contains(el.Name) {
				report.Skipped = append(report.Skipped, path)
				log.Warn(log.CatLayout, "Element name already taken", "path", path)
				return
			}
			if err := reg.RegisterElementContext(ctx, el.Parent, el.Name, el.Node()); err != nil {
				log.ErrorErr(log.CatLayout, "Element registration failed", err,
					"parent", el.Parent,
					"name", el.Name)
				return
			}
			report.Attached = append(report.Attached, path)
		})
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			unsubscribeAll(pending)
			return nil, fmt.Errorf("elements[%d]: %w", i, err)
		}
		pending[i] = sub
	}

	for _, form := range l.Forms {
		if err := reg.RegisterRootContext(ctx, form.Name, form.buildGroup()); err != nil {
			span.SetStatus(codes.Error, err.Error())
			unsubscribeAll(pending)
			return nil, fmt.Errorf("form %q: %w", form.Name, err)
		}
		report.Forms++
	}

	for i, sub := range pending {
		if sub.Active() {
			sub.Unsubscribe()
			report.Unattached = append(report.Unattached, l.Elements[i])
			log.Warn(log.CatLayout, "Element parent never registered",
				"parent", l.Elements[i].Parent,
				"name", l.Elements[i].Name)
		}
	}

	span.SetAttributes(
		attribute.Int("layout.forms", report.Forms),
		attribute.Int("layout.attached", len(report.Attached)),
		attribute.Int("layout.unattached", len(report.Unattached)),
	)
	log.Info(log.CatLayout, "Layout applied",
		"session", reg.SessionID(),
		"forms", report.Forms,
		"attached", len(report.Attached),
		"unattached", len(report.Unattached))
	return report, nil
}

func unsubscribeAll(subs []*pubsub.Subscription) {
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
