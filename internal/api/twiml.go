package api

import "encoding/xml"

// twimlResponse is the messaging response document Twilio expects from a
// webhook: <Response><Message><Body>...</Body></Message></Response>.
type twimlResponse struct {
	XMLName  xml.Name       `xml:"Response"`
	Messages []twimlMessage `xml:"Message"`
}

type twimlMessage struct {
	Body string `xml:"Body"`
}

func newTwiML(segments ...string) twimlResponse {
	resp := twimlResponse{}
	for _, segment := range segments {
		resp.Messages = append(resp.Messages, twimlMessage{Body: segment})
	}
	return resp
}
