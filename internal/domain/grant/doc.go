// Package grant owns per-defence-client delegated-access state: which
// organisations have recorded an instruction, which users currently hold an
// active grant to the client's case material, and any disclosure bundle that
// arrived before the client record existed.
//
// The stream identity is the defence-client id. Granting walks an ordered
// authorization chain spanning two organisations (the granter's and the
// grantee's); the first failing check short-circuits with its named failure
// event. A grantee key exists in state iff that grantee holds an active,
// non-revoked grant.
package grant
