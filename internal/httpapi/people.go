package httpapi

import (
	"net/http"

	"dukaan/backend/internal/domain"
)

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.service.ListUsers(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, users, "")
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	user, err := a.service.GetUser(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, user, "")
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UserCreateRequest
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.service.RegisterUser(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, user, "User created")
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.UserUpdateRequest
	if !a.decode(w, r, &req) {
		return
	}
	user, err := a.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, user, "User updated")
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteUser(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "User deleted")
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.service.ListCustomers(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, customers, "")
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	customer, err := a.service.GetCustomer(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, customer, "")
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerRequest
	if !a.decode(w, r, &req) {
		return
	}
	customer, err := a.service.CreateCustomer(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, customer, "Customer created")
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.CustomerRequest
	if !a.decode(w, r, &req) {
		return
	}
	customer, err := a.service.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, customer, "Customer updated")
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteCustomer(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Customer deleted")
}

func (a *API) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := a.service.ListSuppliers(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, suppliers, "")
}

func (a *API) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	supplier, err := a.service.GetSupplier(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, supplier, "")
}

func (a *API) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierRequest
	if !a.decode(w, r, &req) {
		return
	}
	supplier, err := a.service.CreateSupplier(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.created(w, r, supplier, "Supplier created")
}

func (a *API) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	var req domain.SupplierRequest
	if !a.decode(w, r, &req) {
		return
	}
	supplier, err := a.service.UpdateSupplier(r.Context(), id, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, supplier, "Supplier updated")
}

func (a *API) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.service.DeleteSupplier(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, nil, "Supplier deleted")
}
