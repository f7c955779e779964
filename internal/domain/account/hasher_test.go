package account

import "testing"

func TestHashVerifyRoundTrip(t *testing.T) {
	digest := Hash("alice", "hunter2")
	if !Verify("alice", digest, "hunter2") {
		t.Fatalf("expected verify to succeed for matching secret")
	}
	if Verify("alice", digest, "hunter3") {
		t.Fatalf("expected verify to fail for wrong secret")
	}
}

func TestHashDeterministic(t *testing.T) {
	if Hash("alice", "hunter2") != Hash("alice", "hunter2") {
		t.Fatalf("expected identical inputs to produce identical digests")
	}
}

func TestHashSaltedByIdentity(t *testing.T) {
	if Hash("alice", "hunter2") == Hash("bob", "hunter2") {
		t.Fatalf("expected same secret under different identities to differ")
	}
}

func TestVerifyWrongIdentityFails(t *testing.T) {
	digest := Hash("alice", "hunter2")
	if Verify("bob", digest, "hunter2") {
		t.Fatalf("expected verify under a different salt to fail")
	}
}

func TestVerifyMalformedDigestFailsClosed(t *testing.T) {
	for _, digest := range []string{"", "!!not-base64!!", "AAAA"} {
		if Verify("alice", digest, "hunter2") {
			t.Fatalf("expected verify to fail for digest %q", digest)
		}
	}
}
