// Package advisor ships the built-in advisors for the chatclient chain.
//
// [PromptMemory] splices conversation history from a [memory.Store] into
// the system text and records each exchange; [QuestionAnswer] grounds
// calls on documents retrieved from a [vectorstore.Store], optionally
// rewriting the retrieval query with an auxiliary model call; and
// [SimpleLogger] traces invocations with structured slog entries.
//
// Register advisors on the client builder to run them on every call, or
// per call through the prompt's Advisors block:
//
//	client.Prompt().
//	    User("and my name?").
//	    Advisors(func(a *chatclient.AdvisorSpec) {
//	        a.Param(advisor.ParamConversationID, "session-42")
//	    }).
//	    Call(ctx)
package advisor
