package wsdl

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// --- Raw WSDL 1.1 decoding ---

type wsdlDefinitions struct {
	XMLName         xml.Name       `xml:"definitions"`
	Name            string         `xml:"name,attr"`
	TargetNamespace string         `xml:"targetNamespace,attr"`
	Attrs           []xml.Attr     `xml:",any,attr"`
	Documentation   string         `xml:"documentation"`
	Types           wsdlTypes      `xml:"types"`
	Messages        []wsdlMessage  `xml:"message"`
	PortTypes       []wsdlPortType `xml:"portType"`
	Bindings        []wsdlBinding  `xml:"binding"`
	Services        []wsdlService  `xml:"service"`
}

type wsdlTypes struct {
	Schemas []xsdSchema `xml:"schema"`
}

type wsdlMessage struct {
	Name  string     `xml:"name,attr"`
	Parts []wsdlPart `xml:"part"`
}

type wsdlPart struct {
	Name    string `xml:"name,attr"`
	Element string `xml:"element,attr"`
	Type    string `xml:"type,attr"`
}

type wsdlPortType struct {
	Name       string          `xml:"name,attr"`
	Operations []wsdlOperation `xml:"operation"`
}

type wsdlOperation struct {
	Name          string       `xml:"name,attr"`
	Documentation string       `xml:"documentation"`
	Input         wsdlMsgRef   `xml:"input"`
	Output        wsdlMsgRef   `xml:"output"`
	Faults        []wsdlMsgRef `xml:"fault"`
}

type wsdlMsgRef struct {
	Name    string `xml:"name,attr"`
	Message string `xml:"message,attr"`
}

type wsdlBinding struct {
	Name       string          `xml:"name,attr"`
	Type       string          `xml:"type,attr"`
	Operations []wsdlBindingOp `xml:"operation"`
}

type wsdlBindingOp struct {
	Name          string         `xml:"name,attr"`
	SOAPOperation *soapOperation `xml:"operation"`
}

type soapOperation struct {
	SOAPAction string `xml:"soapAction,attr"`
}

type wsdlService struct {
	Name  string     `xml:"name,attr"`
	Ports []wsdlPort `xml:"port"`
}

type wsdlPort struct {
	Name    string      `xml:"name,attr"`
	Binding string      `xml:"binding,attr"`
	Address soapAddress `xml:"address"`
}

type soapAddress struct {
	Location string `xml:"location,attr"`
}

// parseDefinitions decodes a WSDL 1.1 document.
func parseDefinitions(content []byte) (*wsdlDefinitions, error) {
	var defs wsdlDefinitions
	if err := xml.Unmarshal(content, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse interface description: %w", err)
	}
	if len(defs.PortTypes) == 0 && len(defs.Services) == 0 {
		return nil, fmt.Errorf("document has no portType or service declarations")
	}
	return &defs, nil
}

// soapActions collects soapAction values across all bindings, keyed by
// operation name. Later bindings do not override earlier ones; WSDLs with
// the same operation bound twice keep the first action.
func (d *wsdlDefinitions) soapActions() map[string]string {
	actions := make(map[string]string)
	for _, binding := range d.Bindings {
		for _, op := range binding.Operations {
			if op.SOAPOperation == nil || op.SOAPOperation.SOAPAction == "" {
				continue
			}
			if _, ok := actions[op.Name]; !ok {
				actions[op.Name] = op.SOAPOperation.SOAPAction
			}
		}
	}
	return actions
}

// serviceName prefers the declared service, then the definitions name, then
// falls back to the target namespace's last path segment.
func (d *wsdlDefinitions) serviceName() string {
	if len(d.Services) > 0 && d.Services[0].Name != "" {
		return d.Services[0].Name
	}
	if d.Name != "" {
		return d.Name
	}
	ns := strings.TrimRight(d.TargetNamespace, "/")
	if idx := strings.LastIndexByte(ns, '/'); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

// endpointLocation returns the first soap:address location declared by any
// service port, or empty when none is present.
func (d *wsdlDefinitions) endpointLocation() string {
	for _, svc := range d.Services {
		for _, port := range svc.Ports {
			if port.Address.Location != "" {
				return port.Address.Location
			}
		}
	}
	return ""
}
