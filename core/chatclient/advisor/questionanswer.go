package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/advigo/advigo/core/chatclient"
	"github.com/advigo/advigo/providers/ai"
	"github.com/advigo/advigo/providers/vectorstore"
)

// ParamQueryRequirement is the advisor param that overrides the query
// transformation instruction for a single call.
const ParamQueryRequirement = "query_requirement"

// DefaultQueryRequirement is the transformation instruction used when
// neither the option nor the per-call param supplies one.
const DefaultQueryRequirement = "No transformation needed."

// ErrBlankQueryRequirement is returned when the [ParamQueryRequirement]
// param is present but blank. Supplying the param is an explicit request
// to constrain the transformation; a blank constraint is a caller bug,
// not a fallback case.
var ErrBlankQueryRequirement = fmt.Errorf("%w: query requirement must not be blank", chatclient.ErrConfiguration)

// Context keys under which QuestionAnswer exposes what it did, for
// advisors later in the chain and for tests.
const (
	ctxKeyRetrievalQuery     = "questionanswer.query"
	ctxKeyRetrievedDocuments = "questionanswer.documents"
)

// contextTemplate is appended to the system text on the request leg. The
// single %s receives the retrieved document contents in ranking order.
const contextTemplate = `

Use the documents from the CONTEXT section to answer the user question. If the answer is not in the context, inform the user that you can't answer the question.

---------------------
CONTEXT:
%s
---------------------
`

// QuestionAnswer grounds a chat call on retrieved documents. On the
// request leg it searches a [vectorstore.Store] with the user text and
// splices the results into the system text; the user text itself reaches
// the model verbatim.
//
// When a query transformer is configured, an auxiliary model call rewrites
// the user text into the retrieval query first, steered by a requirement
// such as "query must be in English". Unlike memory, retrieval failures
// abort the call: answering without the requested grounding would invite
// exactly the fabrication this advisor exists to prevent.
type QuestionAnswer struct {
	store       vectorstore.Store
	transformer ai.Provider
	requirement string
	topK        int
	logger      *slog.Logger
}

// QuestionAnswerOption configures a [QuestionAnswer].
type QuestionAnswerOption func(*QuestionAnswer)

// WithQueryTransformer sets the provider used for the auxiliary query
// rewriting call. Without it the user text is searched verbatim.
func WithQueryTransformer(transformer ai.Provider) QuestionAnswerOption {
	return func(a *QuestionAnswer) {
		a.transformer = transformer
	}
}

// WithQueryRequirement sets the default transformation instruction for
// this advisor. The [ParamQueryRequirement] param still overrides it per
// call.
func WithQueryRequirement(requirement string) QuestionAnswerOption {
	return func(a *QuestionAnswer) {
		if requirement != "" {
			a.requirement = requirement
		}
	}
}

// WithTopK sets how many documents are retrieved per call.
func WithTopK(topK int) QuestionAnswerOption {
	return func(a *QuestionAnswer) {
		if topK > 0 {
			a.topK = topK
		}
	}
}

// WithQuestionAnswerLogger sets the logger for retrieval tracing.
func WithQuestionAnswerLogger(logger *slog.Logger) QuestionAnswerOption {
	return func(a *QuestionAnswer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewQuestionAnswer creates the advisor around the given document store.
func NewQuestionAnswer(store vectorstore.Store, opts ...QuestionAnswerOption) *QuestionAnswer {
	advisor := &QuestionAnswer{
		store:       store,
		requirement: DefaultQueryRequirement,
		topK:        vectorstore.DefaultTopK,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(advisor)
	}
	return advisor
}

// Name implements chatclient.Advisor.
func (a *QuestionAnswer) Name() string { return "question-answer" }

// AdviseRequest retrieves documents for the user text and splices them
// into the system text.
func (a *QuestionAnswer) AdviseRequest(ctx context.Context, request chatclient.AdvisedRequest, advCtx *chatclient.AdvisorContext) (chatclient.AdvisedRequest, error) {
	requirement, err := a.resolveRequirement(request)
	if err != nil {
		return chatclient.AdvisedRequest{}, err
	}

	query := request.UserText
	if a.transformer != nil {
		transformed, err := ai.GenerateText(ctx, a.transformer, requirement+"\n\n"+request.UserText)
		if err != nil {
			return chatclient.AdvisedRequest{}, fmt.Errorf("query transform: %w", err)
		}
		if strings.TrimSpace(transformed) != "" {
			query = transformed
		}
	}

	documents, err := a.store.SimilaritySearch(ctx, vectorstore.SearchRequest{
		Query: query,
		TopK:  a.topK,
	})
	if err != nil {
		return chatclient.AdvisedRequest{}, fmt.Errorf("document retrieval: %w", err)
	}

	a.logger.DebugContext(ctx, "documents retrieved",
		slog.String("query", query),
		slog.Int("count", len(documents)),
	)

	advCtx.Set(ctxKeyRetrievalQuery, query)
	advCtx.Set(ctxKeyRetrievedDocuments, documents)

	return request.WithSystemText(request.SystemText + renderContext(documents)), nil
}

// resolveRequirement picks the transformation instruction for one call:
// advisor param, then the configured option, then the baked-in default.
// A param that is present but blank is a configuration error.
func (a *QuestionAnswer) resolveRequirement(request chatclient.AdvisedRequest) (string, error) {
	value, ok := request.Param(ParamQueryRequirement)
	if !ok {
		return a.requirement, nil
	}

	requirement, _ := value.(string)
	if strings.TrimSpace(requirement) == "" {
		return "", ErrBlankQueryRequirement
	}
	return requirement, nil
}

// renderContext renders document contents in ranking order inside the
// context template.
func renderContext(documents []vectorstore.Document) string {
	contents := make([]string, 0, len(documents))
	for _, document := range documents {
		contents = append(contents, document.Content)
	}
	return fmt.Sprintf(contextTemplate, strings.Join(contents, "\n"))
}
