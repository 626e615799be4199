package rules_test

import (
	"testing"

	"github.com/archlint/archlint/internal/domain"
	"github.com/archlint/archlint/internal/domain/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandHandler(ops ...domain.Operation) *domain.Module {
	m := mod("application/PlaceOrderCommandHandler.java", "PlaceOrderCommandHandler",
		domain.KindClass, domain.LayerApplication, domain.RoleCommandHandler)
	m.Operations = ops
	return m
}

func TestCQRS_CommandHandlerVoidReturnAllowed(t *testing.T) {
	model, g := buildGraph(commandHandler(
		domain.Operation{Name: "handle", Params: 1, ReturnType: "void", Returns: domain.ReturnVoid},
	))
	assert.Empty(t, rules.CQRSSeparation().Evaluate(model, g))
}

func TestCQRS_CommandHandlerIdentifierAckAllowed(t *testing.T) {
	model, g := buildGraph(commandHandler(
		domain.Operation{Name: "handle", Params: 1, ReturnType: "OrderId", Returns: domain.ReturnValue},
	))
	assert.Empty(t, rules.CQRSSeparation().Evaluate(model, g))
}

func TestCQRS_CommandHandlerEntityReturnFails(t *testing.T) {
	handler := commandHandler(
		domain.Operation{Name: "handle", Params: 1, ReturnType: "Order", Returns: domain.ReturnUnknown, Line: 14},
	)
	order := mod("domain/Order.java", "Order", domain.KindClass, domain.LayerDomain, domain.RoleEntity)

	// The model resolves the unknown return against the in-project entity.
	model, g := buildGraph(handler, order)
	vs := rules.CQRSSeparation().Evaluate(model, g)

	require.Len(t, vs, 1)
	assert.Equal(t, rules.CodeCommandReturnsState, vs[0].Code)
	assert.Equal(t, domain.SeverityError, vs[0].Severity)
	assert.Equal(t, "application/PlaceOrderCommandHandler.java", vs[0].ModulePath)
	assert.Equal(t, "handle:14", vs[0].Locator)
	assert.Contains(t, vs[0].Message, "Order")
}

func TestCQRS_CommandHandlerDataCarrierReturnFails(t *testing.T) {
	handler := commandHandler(
		domain.Operation{Name: "handle", Params: 1, ReturnType: "OrderView", Returns: domain.ReturnValue},
	)
	model, g := buildGraph(handler)
	vs := rules.CQRSSeparation().Evaluate(model, g)
	require.Len(t, vs, 1)
	assert.Equal(t, rules.CodeCommandReturnsState, vs[0].Code)
}

func TestCQRS_CommandHandlerUnresolvableReturnTolerated(t *testing.T) {
	model, g := buildGraph(commandHandler(
		domain.Operation{Name: "handle", Params: 1, ReturnType: "ResponseEntity", Returns: domain.ReturnUnknown},
	))
	assert.Empty(t, rules.CQRSSeparation().Evaluate(model, g))
}

func TestCQRS_QueryHandlerReadCallsAllowed(t *testing.T) {
	handler := mod("application/GetOrderQueryHandler.java", "GetOrderQueryHandler",
		domain.KindClass, domain.LayerApplication, domain.RoleQueryHandler)
	handler.Refs = []domain.Reference{
		{Symbol: "OrderRepository", Kind: domain.RefFieldType, Member: "repository"},
		{Symbol: "OrderRepository", Kind: domain.RefCallSite, Member: "handle", Call: "findById", Line: 12},
	}
	port := mod("domain/OrderRepository.java", "OrderRepository", domain.KindInterface, domain.LayerDomain, domain.RoleRepositoryPort)

	model, g := buildGraph(handler, port)
	assert.Empty(t, rules.CQRSSeparation().Evaluate(model, g))
}

func TestCQRS_QueryHandlerMutatingRepositoryCallFails(t *testing.T) {
	handler := mod("application/GetOrderQueryHandler.java", "GetOrderQueryHandler",
		domain.KindClass, domain.LayerApplication, domain.RoleQueryHandler)
	handler.Refs = []domain.Reference{
		{Symbol: "OrderRepository", Kind: domain.RefCallSite, Member: "handle", Call: "save", Line: 18},
	}
	port := mod("domain/OrderRepository.java", "OrderRepository", domain.KindInterface, domain.LayerDomain, domain.RoleRepositoryPort)

	model, g := buildGraph(handler, port)
	vs := rules.CQRSSeparation().Evaluate(model, g)

	require.Len(t, vs, 1)
	assert.Equal(t, rules.CodeQueryMutatesState, vs[0].Code)
	assert.Equal(t, "handle:18", vs[0].Locator)
	assert.Contains(t, vs[0].Message, "OrderRepository.save")
}

func TestCQRS_QueryHandlerMutatingClientCallFails(t *testing.T) {
	handler := mod("application/GetOrderQueryHandler.java", "GetOrderQueryHandler",
		domain.KindClass, domain.LayerApplication, domain.RoleQueryHandler)
	handler.Refs = []domain.Reference{
		{Symbol: "PaymentClient", Kind: domain.RefCallSite, Member: "handle", Call: "storeReceipt", Line: 9},
	}
	client := mod("infrastructure/PaymentClient.java", "PaymentClient", domain.KindClass, domain.LayerInfrastructure, domain.RoleClient)

	model, g := buildGraph(handler, client)
	vs := rules.CQRSSeparation().Evaluate(model, g)
	require.Len(t, vs, 1)
	assert.Equal(t, rules.CodeQueryMutatesState, vs[0].Code)
}

func TestCQRS_QueryHandlerMutatingCallOnNonRepositoryIgnored(t *testing.T) {
	handler := mod("application/GetOrderQueryHandler.java", "GetOrderQueryHandler",
		domain.KindClass, domain.LayerApplication, domain.RoleQueryHandler)
	handler.Refs = []domain.Reference{
		{Symbol: "AuditLog", Kind: domain.RefCallSite, Member: "handle", Call: "saveTrace", Line: 11},
	}
	audit := mod("application/AuditLog.java", "AuditLog", domain.KindClass, domain.LayerApplication, domain.RoleOther)

	model, g := buildGraph(handler, audit)
	assert.Empty(t, rules.CQRSSeparation().Evaluate(model, g))
}

func TestCQRS_QueryHandlerExternalCallsIgnored(t *testing.T) {
	handler := mod("application/GetOrderQueryHandler.java", "GetOrderQueryHandler",
		domain.KindClass, domain.LayerApplication, domain.RoleQueryHandler)
	handler.Refs = []domain.Reference{
		{Symbol: "CacheManager", Kind: domain.RefCallSite, Member: "handle", Call: "put", Line: 7},
	}

	model, g := buildGraph(handler)
	assert.Empty(t, rules.CQRSSeparation().Evaluate(model, g))
}

func TestCQRS_OtherRolesNotChecked(t *testing.T) {
	svc := mod("application/OrderService.java", "OrderService", domain.KindClass, domain.LayerApplication, domain.RoleOther)
	svc.Operations = []domain.Operation{
		{Name: "loadOrder", ReturnType: "Order", Returns: domain.ReturnEntity},
	}
	model, g := buildGraph(svc)
	assert.Empty(t, rules.CQRSSeparation().Evaluate(model, g))
}
