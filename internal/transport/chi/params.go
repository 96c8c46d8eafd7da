package chi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/microblog/internal/domain"
	postuc "github.com/kailas-cloud/microblog/internal/usecase/post"
)

// Query parameter names of GET /blogposts and GET /search.
const (
	ParamUserIDs      = "userIds"
	ParamFromDateTime = "fromDateTime"
	ParamToDateTime   = "toDateTime"
	ParamSort         = "sort"
	ParamSize         = "size"
	ParamOffset       = "offset"
	ParamSearchTerm   = "searchTerm"
)

// bindListParams binds GET /blogposts query parameters (form style, exploded).
// userIds and sort also accept comma-separated values.
func bindListParams(r *http.Request) (postuc.ListParams, error) {
	q := r.URL.Query()

	var (
		userIDs  *[]string
		sorts    *[]string
		from, to *time.Time
		size     *int
		offset   *int
	)
	bindings := []struct {
		name string
		dest any
	}{
		{ParamUserIDs, &userIDs},
		{ParamSort, &sorts},
		{ParamFromDateTime, &from},
		{ParamToDateTime, &to},
		{ParamSize, &size},
		{ParamOffset, &offset},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return postuc.ListParams{}, fmt.Errorf("%w: invalid %s parameter: %w", domain.ErrBadRequest, b.name, err)
		}
	}

	p := postuc.ListParams{
		From: from,
		To:   to,
	}
	if userIDs != nil {
		p.UserIDs = splitCSV(*userIDs)
	}
	if sorts != nil {
		p.Sort = splitCSV(*sorts)
	}
	if size != nil {
		if *size <= 0 {
			return postuc.ListParams{}, fmt.Errorf("%w: size must be > 0", domain.ErrInvalidCriteria)
		}
		p.Size = *size
	}
	if offset != nil {
		p.Offset = *offset
	}
	return p, nil
}

// bindSearchTerm binds the required searchTerm parameter.
func bindSearchTerm(r *http.Request) (string, error) {
	var term string
	if err := runtime.BindQueryParameter("form", true, true, ParamSearchTerm, r.URL.Query(), &term); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEmptySearchTerm, err)
	}
	return term, nil
}

// splitCSV flattens comma-separated values, dropping blanks.
func splitCSV(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
