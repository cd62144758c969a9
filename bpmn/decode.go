package bpmn

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// elementKinds maps BPMN 2.0 flow node tags to element kinds. Tags not
// listed here (lanes, data objects, annotations, associations) are skipped.
var elementKinds = map[string]ElementKind{
	"task":                   Task,
	"userTask":               Task,
	"serviceTask":            Task,
	"scriptTask":             Task,
	"sendTask":               Task,
	"receiveTask":            Task,
	"manualTask":             Task,
	"businessRuleTask":       Task,
	"callActivity":           Task,
	"subProcess":             Task,
	"adHocSubProcess":        Task,
	"transaction":            Task,
	"startEvent":             StartEvent,
	"endEvent":               EndEvent,
	"intermediateCatchEvent": IntermediateEvent,
	"intermediateThrowEvent": IntermediateEvent,
	"boundaryEvent":          IntermediateEvent,
	"exclusiveGateway":       ExclusiveGateway,
	"eventBasedGateway":      ExclusiveGateway,
	"parallelGateway":        ParallelGateway,
	"inclusiveGateway":       InclusiveGateway,
	"complexGateway":         InclusiveGateway,
}

type xmlNode struct {
	ID             string `xml:"id,attr"`
	Name           string `xml:"name,attr"`
	AttachedToRef  string `xml:"attachedToRef,attr"`
	CancelActivity string `xml:"cancelActivity,attr"`
}

type xmlFlow struct {
	ID                  string `xml:"id,attr"`
	Name                string `xml:"name,attr"`
	SourceRef           string `xml:"sourceRef,attr"`
	TargetRef           string `xml:"targetRef,attr"`
	ConditionExpression string `xml:"conditionExpression"`
}

// Parse decodes a BPMN 2.0 XML document and builds its Graph. Every
// <process> of the document is merged into one graph, in document order.
func Parse(r io.Reader) (*Graph, error) {
	elements, flows, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return Build(elements, flows)
}

// ParseFile parses the BPMN document at path.
func ParseFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagram: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// ParseString parses a BPMN document held in memory.
func ParseString(s string) (*Graph, error) {
	return Parse(strings.NewReader(s))
}

// Decode reads element and flow lists without validating them.
func Decode(r io.Reader) ([]Element, []Flow, error) {
	d := xml.NewDecoder(r)
	d.Strict = true

	var (
		elements  []Element
		flows     []Flow
		processes int
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, malformed("", "invalid XML", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "process" {
			continue
		}
		processes++
		els, fls, err := decodeProcess(d)
		if err != nil {
			return nil, nil, err
		}
		elements = append(elements, els...)
		flows = append(flows, fls...)
	}

	if processes == 0 {
		return nil, nil, malformed("", "document contains no process", nil)
	}
	return elements, flows, nil
}

// decodeProcess consumes the children of a <process> up to its end tag.
func decodeProcess(d *xml.Decoder) ([]Element, []Flow, error) {
	var (
		elements []Element
		flows    []Flow
	)
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, nil, malformed("", "invalid XML inside process", err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			return elements, flows, nil

		case xml.StartElement:
			if t.Name.Local == "sequenceFlow" {
				var f xmlFlow
				if err := d.DecodeElement(&f, &t); err != nil {
					return nil, nil, malformed(attr(t, "id"), "invalid sequence flow", err)
				}
				condition := strings.TrimSpace(f.ConditionExpression)
				if condition == "" {
					condition = cleanLabel(f.Name)
				}
				flows = append(flows, Flow{ID: f.ID, Source: f.SourceRef, Target: f.TargetRef, Condition: condition})
				continue
			}

			kind, known := elementKinds[t.Name.Local]
			if !known {
				if err := d.Skip(); err != nil {
					return nil, nil, malformed("", "invalid XML inside process", err)
				}
				continue
			}

			var n xmlNode
			if err := d.DecodeElement(&n, &t); err != nil {
				return nil, nil, malformed(attr(t, "id"), "invalid "+t.Name.Local, err)
			}
			elements = append(elements, Element{ID: n.ID, Kind: kind, Label: cleanLabel(n.Name)})

			// A boundary event continues the activity it is attached to.
			// cancelActivity defaults to true.
			if t.Name.Local == "boundaryEvent" && n.AttachedToRef != "" {
				attached := Interrupting
				if strings.EqualFold(strings.TrimSpace(n.CancelActivity), "false") {
					attached = NonInterrupting
				}
				flows = append(flows, Flow{ID: n.ID + "#attached", Source: n.AttachedToRef, Target: n.ID, Attached: attached})
			}
		}
	}
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// cleanLabel collapses whitespace runs, including line breaks that
// modelling tools put into long names, into single spaces.
func cleanLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
