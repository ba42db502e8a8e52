// Package chatclient provides the advised chat call façade: a fluent
// client that runs every model call through a chain of advisors.
//
// An advisor intercepts a call around the model. The shipped advisors
// cover the common interception points: PromptMemory splices conversation
// history into the system text and records the exchange afterwards,
// QuestionAnswer retrieves documents and grounds the call on them, and
// SimpleLogger traces each invocation. Build a client once with
// [NewBuilder], then issue calls through [Client.Prompt]:
//
//	client, err := chatclient.NewBuilder(provider).
//	    DefaultSystem("You are a helpful assistant.").
//	    DefaultAdvisors(advisor.NewPromptMemory(store)).
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	response, err := client.Prompt().
//	    User("What did I just ask you?").
//	    Conversation("session-42").
//	    Call(ctx)
//
// Typed results are extracted from a completed call with [Entity].
// Streaming calls go through [PromptSpec.Stream] and return an
// [ai.ChatStream]; advisors decorate the stream before the first event
// is pulled.
package chatclient
