package api

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strings"

	appErrors "github.com/noah-isme/smart-attendance-cli/pkg/errors"
)

// FilePart is one file carried in a multipart request.
type FilePart struct {
	FieldName string
	FileName  string
	MIMEType  string
	Data      []byte
}

func encodeMultipart(fields map[string]string, file FilePart) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "write multipart field")
		}
	}

	if file.FieldName != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(file.FieldName)+`"; filename="`+escapeQuotes(file.FileName)+`"`)
		mime := file.MIMEType
		if mime == "" {
			mime = "application/octet-stream"
		}
		header.Set("Content-Type", mime)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "create multipart file part")
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "write multipart file part")
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "finalise multipart body")
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
